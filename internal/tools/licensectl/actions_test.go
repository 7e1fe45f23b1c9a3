package licensectl

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/database/dbtest"
	"github.com/sandeepkv93/authplus-license-service/internal/domain"
	"github.com/sandeepkv93/authplus-license-service/internal/repository"
	"github.com/sandeepkv93/authplus-license-service/internal/service"
)

const testFernetKey = "cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4="

type recordingExporter struct {
	exported []domain.License
	err      error
}

func (e *recordingExporter) Export(_ context.Context, licenses []domain.License) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.exported = licenses
	return "license-batches/2026-10-18/batch.csv", nil
}

func (e *recordingExporter) PresignedURL(_ context.Context, key string) (string, error) {
	return "https://storage.local/" + key, nil
}

type staticStats struct {
	stats service.Stats
	err   error
}

func (s staticStats) Snapshot(context.Context) (service.Stats, error) {
	return s.stats, s.err
}

func newTestLedger(t *testing.T) *service.LicenseLedger {
	t.Helper()
	db := dbtest.Open(t)
	return service.NewLicenseLedger(repository.NewLicenseRepository(db, repository.StoreOptions{}))
}

func TestGenerateLicensesWithoutExport(t *testing.T) {
	ledger := newTestLedger(t)
	details, err := generateLicenses(context.Background(), ledger, nil, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(details) != 4 || details[3] != "generated=3" {
		t.Fatalf("unexpected details: %v", details)
	}
	n, err := ledger.Count(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("expected 3 stored licenses, got %d err=%v", n, err)
	}
}

func TestGenerateLicensesExportsManifest(t *testing.T) {
	ledger := newTestLedger(t)
	exporter := &recordingExporter{}
	details, err := generateLicenses(context.Background(), ledger, exporter, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(exporter.exported) != 2 {
		t.Fatalf("expected 2 exported licenses, got %d", len(exporter.exported))
	}
	joined := strings.Join(details, "\n")
	if !strings.Contains(joined, "export_object=license-batches/") || !strings.Contains(joined, "export_url=https://storage.local/") {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestGenerateLicensesExportFailureKeepsIssuedKeys(t *testing.T) {
	ledger := newTestLedger(t)
	exporter := &recordingExporter{err: service.ErrExportUploadFailed}
	details, err := generateLicenses(context.Background(), ledger, exporter, 1)
	if !errors.Is(err, service.ErrExportUploadFailed) {
		t.Fatalf("expected upload failure, got %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected issued key still reported, got %v", details)
	}
}

func TestGenerateLicensesRejectsBatchSize(t *testing.T) {
	ledger := newTestLedger(t)
	if _, err := generateLicenses(context.Background(), ledger, nil, 0); !errors.Is(err, service.ErrBatchSize) {
		t.Fatalf("expected batch size error, got %v", err)
	}
}

func TestListAndCountLicenses(t *testing.T) {
	ledger := newTestLedger(t)
	if _, err := ledger.GenerateBatch(context.Background(), 3); err != nil {
		t.Fatalf("seed licenses: %v", err)
	}
	details, err := listLicenses(context.Background(), ledger, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(details) != 3 || details[2] != "page=1/2 total=3" {
		t.Fatalf("unexpected list details: %v", details)
	}
	counted, err := countLicenses(context.Background(), ledger)
	if err != nil || counted[0] != "license_count=3" {
		t.Fatalf("unexpected count: %v err=%v", counted, err)
	}
}

func TestSnapshotStats(t *testing.T) {
	details, err := snapshotStats(context.Background(), staticStats{stats: service.Stats{UserCount: 4, LicenseCount: 9}})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if details[0] != "user_count=4" || details[1] != "license_count=9" {
		t.Fatalf("unexpected stats details: %v", details)
	}
	if _, err := snapshotStats(context.Background(), staticStats{err: errors.New("down")}); err == nil {
		t.Fatal("expected store fault to surface")
	}
}

func TestDecryptInputs(t *testing.T) {
	f, err := codec.NewFernet([]string{testFernetKey})
	if err != nil {
		t.Fatalf("fernet: %v", err)
	}
	fields, err := codec.NewResponseEncoder(f).Fields(map[string]string{"username": "alice", "note": "vip"})
	if err != nil {
		t.Fatalf("encode fields: %v", err)
	}
	body, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	status, err := codec.NewResponseEncoder(f).Success()
	if err != nil {
		t.Fatalf("encode status: %v", err)
	}

	details, err := decryptInputs(f, []string{string(body), status["status"]})
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if len(details) != 3 {
		t.Fatalf("unexpected details: %v", details)
	}
	if details[0] != "note=vip" || details[1] != "username=alice" {
		t.Fatalf("expected sorted plain fields, got %v", details)
	}
	if !strings.HasSuffix(details[2], "(success)") {
		t.Fatalf("expected classified status, got %q", details[2])
	}

	if _, err := decryptInputs(f, []string{"not-a-token"}); !errors.Is(err, codec.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{{"license", "generate"}, {"license", "list"}, {"license", "count"}, {"stats"}, {"decrypt"}} {
		sub, _, err := cmd.Find(path)
		if err != nil || sub.Name() != path[len(path)-1] {
			t.Fatalf("expected subcommand %v", path)
		}
	}
	gen, _, _ := cmd.Find([]string{"license", "generate"})
	if gen.Flags().Lookup("count") == nil || gen.Flags().Lookup("export") == nil {
		t.Fatal("expected count and export flags")
	}
}
