package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"alfredoptarigan/job-companion/internal/models"
	"alfredoptarigan/job-companion/internal/repositories"
)

const (
	ColumnWorkYear        = "work_year"
	ColumnJobTitle        = "job_title"
	ColumnCompanyLocation = "company_location"
	ColumnExperienceLevel = "experience_level"
	ColumnSalaryInUSD     = "salary_in_usd"
)

var requiredColumns = []string{ColumnJobTitle, ColumnCompanyLocation, ColumnExperienceLevel, ColumnSalaryInUSD}

// storedColumns is the header used for records that come from Postgres,
// where only the typed columns are kept.
var storedColumns = []string{ColumnWorkYear, ColumnJobTitle, ColumnExperienceLevel, ColumnCompanyLocation, ColumnSalaryInUSD}

// Dataset is the salary trends table. It is built once at startup and never
// mutated, so it can be shared by concurrent requests without locking.
type Dataset struct {
	header    []string
	records   []models.SalaryRecord
	jobTitles []string
	locations []string
}

func NewDataset(header []string, records []models.SalaryRecord) *Dataset {
	ds := &Dataset{
		header:  append([]string(nil), header...),
		records: records,
	}

	seenTitles := make(map[string]bool)
	seenLocations := make(map[string]bool)
	for _, rec := range records {
		if !seenTitles[rec.JobTitle] {
			seenTitles[rec.JobTitle] = true
			ds.jobTitles = append(ds.jobTitles, rec.JobTitle)
		}
		if !seenLocations[rec.CompanyLocation] {
			seenLocations[rec.CompanyLocation] = true
			ds.locations = append(ds.locations, rec.CompanyLocation)
		}
	}

	return ds
}

// Filter returns the rows whose job title and company location both match
// exactly, in dataset order.
func (d *Dataset) Filter(jobTitle, location string) []models.SalaryRecord {
	var out []models.SalaryRecord
	for _, rec := range d.records {
		if rec.JobTitle == jobTitle && rec.CompanyLocation == location {
			out = append(out, rec)
		}
	}
	return out
}

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) Records() []models.SalaryRecord {
	return append([]models.SalaryRecord(nil), d.records...)
}

func (d *Dataset) Header() []string { return append([]string(nil), d.header...) }

// JobTitles returns the distinct job titles in first-seen order.
func (d *Dataset) JobTitles() []string { return append([]string(nil), d.jobTitles...) }

// Locations returns the distinct company locations in first-seen order.
func (d *Dataset) Locations() []string { return append([]string(nil), d.locations...) }

// RowValues returns every column of a record keyed by header name.
func (d *Dataset) RowValues(rec models.SalaryRecord) map[string]string {
	if rec.Columns != nil {
		out := make(map[string]string, len(rec.Columns))
		for k, v := range rec.Columns {
			out[k] = v
		}
		return out
	}
	return map[string]string{
		ColumnWorkYear:        rec.WorkYear,
		ColumnJobTitle:        rec.JobTitle,
		ColumnExperienceLevel: rec.ExperienceLevel,
		ColumnCompanyLocation: rec.CompanyLocation,
		ColumnSalaryInUSD:     strconv.FormatFloat(rec.SalaryInUSD, 'f', -1, 64),
	}
}

// ParseSalaryCSV reads a salary CSV with at least the job_title,
// company_location, experience_level and salary_in_usd columns.
func ParseSalaryCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidDataset)
		}
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrInvalidDataset, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[i] = name
		index[name] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrInvalidDataset, strings.Join(missing, ", "))
	}

	var records []models.SalaryRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
		}

		rawSalary := strings.TrimSpace(row[index[ColumnSalaryInUSD]])
		salary, err := strconv.ParseFloat(rawSalary, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid salary_in_usd %q", ErrInvalidDataset, line, rawSalary)
		}

		columns := make(map[string]string, len(header))
		for i, name := range header {
			columns[name] = row[i]
		}

		rec := models.SalaryRecord{
			JobTitle:        row[index[ColumnJobTitle]],
			CompanyLocation: row[index[ColumnCompanyLocation]],
			ExperienceLevel: row[index[ColumnExperienceLevel]],
			SalaryInUSD:     salary,
			Columns:         columns,
		}
		if i, ok := index[ColumnWorkYear]; ok {
			rec.WorkYear = row[i]
		}
		records = append(records, rec)
	}

	return NewDataset(header, records), nil
}

type DatasetLoader interface {
	Load(ctx context.Context) (*Dataset, error)
}

type fileDatasetLoader struct {
	path string
}

func NewFileDatasetLoader(path string) DatasetLoader {
	return &fileDatasetLoader{path: path}
}

func (l *fileDatasetLoader) Load(ctx context.Context) (*Dataset, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	ds, err := ParseSalaryCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return ds, nil
}

// S3ObjectGetter is the part of the S3 client the loader needs.
type S3ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3DatasetLoader struct {
	client S3ObjectGetter
	bucket string
	key    string
}

// NewS3DatasetLoader loads the CSV from an s3://bucket/key URI using the
// default AWS credential chain.
func NewS3DatasetLoader(ctx context.Context, region, uri string) (DatasetLoader, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3DatasetLoaderWithClient(s3.NewFromConfig(cfg), bucket, key), nil
}

func NewS3DatasetLoaderWithClient(client S3ObjectGetter, bucket, key string) DatasetLoader {
	return &s3DatasetLoader{client: client, bucket: bucket, key: key}
}

func (l *s3DatasetLoader) Load(ctx context.Context) (*Dataset, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object s3://%s/%s: %w", l.bucket, l.key, err)
	}
	defer out.Body.Close()

	ds, err := ParseSalaryCSV(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", l.bucket, l.key, err)
	}
	return ds, nil
}

func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 URI %q: %w", uri, err)
	}
	if u.Scheme != "s3" || u.Host == "" || strings.Trim(u.Path, "/") == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q: expected s3://bucket/key", uri)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

type repositoryDatasetLoader struct {
	repo repositories.SalaryRepository
}

func NewRepositoryDatasetLoader(repo repositories.SalaryRepository) DatasetLoader {
	return &repositoryDatasetLoader{repo: repo}
}

func (l *repositoryDatasetLoader) Load(ctx context.Context) (*Dataset, error) {
	records, err := l.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load salary records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: salary_records table is empty", ErrInvalidDataset)
	}
	return NewDataset(storedColumns, records), nil
}
