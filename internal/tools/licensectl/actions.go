package licensectl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/domain"
	"github.com/sandeepkv93/authplus-license-service/internal/repository"
	"github.com/sandeepkv93/authplus-license-service/internal/service"
)

var ErrExportNotConfigured = errors.New("license export requested but LICENSE_EXPORT_* settings are incomplete")

type batchIssuer interface {
	GenerateBatch(ctx context.Context, n int) ([]domain.License, error)
}

type licenseLister interface {
	List(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.License], error)
	Count(ctx context.Context) (int64, error)
}

// generateLicenses issues count licenses and, when exporter is set, uploads
// the manifest. Licenses issued before a partial failure are still reported.
func generateLicenses(ctx context.Context, issuer batchIssuer, exporter service.LicenseExporter, count int) ([]string, error) {
	issued, err := issuer.GenerateBatch(ctx, count)
	details := make([]string, 0, len(issued)+3)
	for _, lic := range issued {
		details = append(details, lic.Key+" "+lic.DateCreated)
	}
	if err != nil {
		return details, fmt.Errorf("generated %d of %d licenses: %w", len(issued), count, err)
	}
	details = append(details, fmt.Sprintf("generated=%d", len(issued)))
	if exporter == nil {
		return details, nil
	}
	key, err := exporter.Export(ctx, issued)
	if err != nil {
		return details, err
	}
	details = append(details, "export_object="+key)
	url, err := exporter.PresignedURL(ctx, key)
	if err != nil {
		return details, err
	}
	return append(details, "export_url="+url), nil
}

func listLicenses(ctx context.Context, lister licenseLister, page, pageSize int) ([]string, error) {
	res, err := lister.List(ctx, repository.PageRequest{Page: page, PageSize: pageSize})
	if err != nil {
		return nil, err
	}
	details := make([]string, 0, len(res.Items)+1)
	for _, lic := range res.Items {
		details = append(details, lic.Key+" "+lic.DateCreated)
	}
	return append(details, fmt.Sprintf("page=%d/%d total=%d", res.Page, res.TotalPages, res.Total)), nil
}

func countLicenses(ctx context.Context, lister licenseLister) ([]string, error) {
	n, err := lister.Count(ctx)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("license_count=%d", n)}, nil
}

func snapshotStats(ctx context.Context, stats service.StatsReader) ([]string, error) {
	s, err := stats.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("user_count=%d", s.UserCount),
		fmt.Sprintf("license_count=%d", s.LicenseCount),
	}, nil
}

// decryptInputs accepts either bare tokens or a JSON response body and
// reports each decrypted value with its status classification.
func decryptInputs(cipher codec.Decrypter, inputs []string) ([]string, error) {
	client := codec.NewClient(cipher)
	var details []string
	for i, in := range inputs {
		in = strings.TrimSpace(in)
		if strings.HasPrefix(in, "{") {
			var fields map[string]string
			if err := json.Unmarshal([]byte(in), &fields); err != nil {
				return details, fmt.Errorf("input %d: parse response body: %w", i, err)
			}
			plain, err := client.Decode(fields)
			if err != nil {
				return details, fmt.Errorf("input %d: %w", i, err)
			}
			names := make([]string, 0, len(plain))
			for k := range plain {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				details = append(details, describeField(k, plain[k]))
			}
			continue
		}
		v, err := cipher.Decrypt(in)
		if err != nil {
			return details, fmt.Errorf("input %d: %w", i, err)
		}
		details = append(details, describeField("token", v))
	}
	return details, nil
}

func describeField(name, value string) string {
	if name != "status" && name != "token" {
		return name + "=" + value
	}
	return fmt.Sprintf("%s=%s (%s)", name, value, codec.ClassifyText(value))
}
