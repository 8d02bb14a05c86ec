package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ExportResult locates an uploaded lead export.
type ExportResult struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Rows   int    `json:"rows"`
}

// LeadExporter uploads the lead log as CSV to S3.
type LeadExporter struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

// NewS3LeadExporter loads the default AWS configuration chain. An empty bucket returns
// nil, meaning exports are disabled.
func NewS3LeadExporter(ctx context.Context, bucket string) (*LeadExporter, error) {
	if bucket == "" {
		return nil, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return NewLeadExporter(s3.NewFromConfig(cfg), bucket), nil
}

func NewLeadExporter(client objectPutter, bucket string) *LeadExporter {
	return &LeadExporter{client: client, bucket: bucket, now: time.Now}
}

func (e *LeadExporter) Export(ctx context.Context, leads []models.Lead) (ExportResult, error) {
	var buf bytes.Buffer
	if err := WriteLeadsCSV(&buf, leads); err != nil {
		return ExportResult{}, errs.NewInternalErrorWithCause("failed to encode leads", err)
	}

	key := fmt.Sprintf("leads/leads-%s.csv", e.now().UTC().Format("20060102T150405Z"))
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return ExportResult{}, errs.NewDeliveryError("s3", err)
	}
	return ExportResult{Bucket: e.bucket, Key: key, Rows: len(leads)}, nil
}

// WriteLeadsCSV writes a header row followed by one row per lead.
func WriteLeadsCSV(w io.Writer, leads []models.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "captured_at", "email", "phone", "project_id", "project_name"}); err != nil {
		return err
	}
	for _, l := range leads {
		err := cw.Write([]string{
			l.ID.String(),
			l.CapturedAt.UTC().Format(time.RFC3339),
			csvCell(l.Email),
			csvCell(l.Phone),
			l.ProjectID.String(),
			csvCell(l.ProjectName),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvCell quotes visitor-supplied text so spreadsheets do not evaluate it as a formula.
func csvCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
