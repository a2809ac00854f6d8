package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/perimetra/netinv/internal/inventory"
)

// keyTimeLayout is second granularity; all groups written from one work
// item share the same suffix so the files of a run correlate.
const keyTimeLayout = "20060102-150405"

// S3API defines the S3 operations used by the writer.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Key builds the partition key for one resource-type group.
func Key(prefix string, resourceType inventory.ResourceType, accountID, region string, ts time.Time) string {
	return fmt.Sprintf("%s%s/account=%s/region=%s/data-%s.json",
		prefix, resourceType, accountID, region, ts.UTC().Format(keyTimeLayout))
}

// Writer persists materialized groups as newline-delimited JSON, one
// object per line, so downstream systems can stream without parsing a
// full document. Writes are append-only: every run gets its own
// timestamped key and no key is ever overwritten or deleted.
type Writer struct {
	client S3API
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewWriter creates a writer for the destination bucket and prefix.
func NewWriter(client S3API, bucket, prefix string, logger zerolog.Logger) *Writer {
	return &Writer{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// WriteGroups writes each group to its partition key in deterministic
// type order. A failed put surfaces as StorageWriteError and fails the
// whole work item; groups already written are not rolled back.
func (w *Writer) WriteGroups(ctx context.Context, groups map[inventory.ResourceType][]any, accountID, region string, ts time.Time) error {
	for _, resourceType := range inventory.ResourceTypes() {
		records, ok := groups[resourceType]
		if !ok {
			continue
		}
		if err := w.writeGroup(ctx, resourceType, records, accountID, region, ts); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeGroup(ctx context.Context, resourceType inventory.ResourceType, records []any, accountID, region string, ts time.Time) error {
	key := Key(w.prefix, resourceType, accountID, region, ts)

	body, err := encodeJSONL(records)
	if err != nil {
		return &inventory.StorageWriteError{Key: key, Err: err}
	}

	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return &inventory.StorageWriteError{Key: key, Err: err}
	}

	w.logger.Debug().
		Str("key", key).
		Str("resource_type", string(resourceType)).
		Int("records", len(records)).
		Msg("stored partition")
	return nil
}

// encodeJSONL renders one JSON object per line, no enclosing array.
func encodeJSONL(records []any) ([]byte, error) {
	var buf bytes.Buffer
	for i, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("marshal record: %w", err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
