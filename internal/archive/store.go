// Package archive copies appointment events to S3 as a durable audit trail.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vitaldent/clinic-site/internal/events"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Record is the archived form of one appointment event.
type Record struct {
	Version       string          `json:"version"`
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AppointmentID string          `json:"appointment_id"`
	ArchivedAt    time.Time       `json:"archived_at"`
	Payload       json.RawMessage `json:"payload"`
}

// ManifestEntry is one line of the monthly JSONL index.
type ManifestEntry struct {
	EventID       string   `json:"event_id"`
	EventType     string   `json:"event_type"`
	AppointmentID string   `json:"appointment_id"`
	S3Key         string   `json:"s3_key"`
	PhoneHash     string   `json:"phone_hash,omitempty"`
	Email         string   `json:"email,omitempty"`
	Treatments    []string `json:"treatments,omitempty"`
	ScheduledFor  string   `json:"scheduled_for,omitempty"`
	ArchivedAt    string   `json:"archived_at"`
}

// Store archives appointment outbox events.
type Store struct {
	bucket string
	client S3API
	logger *logging.Logger
	now    func() time.Time
}

// NewStore creates an archive Store. With no bucket every call is a no-op.
func NewStore(client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, client: client, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Enabled reports whether a bucket and client are configured.
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.client != nil
}

// Handle implements events.DeliveryHandler for appointment events.
func (s *Store) Handle(ctx context.Context, entry events.OutboxEntry) error {
	if !s.Enabled() {
		return nil
	}
	entryMeta := ManifestEntry{EventID: entry.ID.String(), EventType: entry.Type}
	switch entry.Type {
	case events.TypeAppointmentRequested:
		var evt events.AppointmentRequestedV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("archive: decode %s: %w", entry.Type, err)
		}
		entryMeta.AppointmentID = evt.AppointmentID
		entryMeta.PhoneHash = HashPhone(evt.Phone)
		entryMeta.Email = MaskEmail(evt.Email)
		entryMeta.Treatments = evt.TreatmentNames
		entryMeta.ScheduledFor = evt.ScheduledFor.UTC().Format(time.RFC3339)
	case events.TypeAppointmentRescheduled:
		var evt events.AppointmentRescheduledV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("archive: decode %s: %w", entry.Type, err)
		}
		entryMeta.AppointmentID = evt.AppointmentID
		entryMeta.ScheduledFor = evt.ScheduledFor.UTC().Format(time.RFC3339)
	default:
		return nil
	}

	now := s.now()
	record := Record{
		Version:       "1.0",
		EventID:       entryMeta.EventID,
		EventType:     entry.Type,
		AppointmentID: entryMeta.AppointmentID,
		ArchivedAt:    now,
		Payload:       entry.Payload,
	}
	key, err := s.putRecord(ctx, record)
	if err != nil {
		return err
	}
	entryMeta.S3Key = key
	entryMeta.ArchivedAt = now.Format(time.RFC3339)

	if err := s.AppendManifest(ctx, entryMeta); err != nil {
		s.logger.Warn("failed to append archive manifest", "error", err, "event_id", entryMeta.EventID)
	}
	s.logger.Info("archived appointment event", "event_id", entryMeta.EventID, "s3_key", key)
	return nil
}

// RecordKey is where record is stored; re-archiving an event overwrites it.
func RecordKey(record Record) string {
	at := record.ArchivedAt
	return fmt.Sprintf("appointments/v1/by-date/%d/%02d/%02d/%s-%s.json",
		at.Year(), at.Month(), at.Day(), record.AppointmentID, record.EventID)
}

// ManifestKey is the monthly index for at.
func ManifestKey(at time.Time) string {
	return fmt.Sprintf("appointments/v1/manifests/%d-%02d.jsonl", at.Year(), at.Month())
}

func (s *Store) putRecord(ctx context.Context, record Record) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("archive: marshal record: %w", err)
	}
	key := RecordKey(record)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("archive: s3 put %s: %w", key, err)
	}
	return key, nil
}

// AppendManifest appends entry to the current month's manifest. S3 has no
// append, so the object is read, extended and rewritten.
func (s *Store) AppendManifest(ctx context.Context, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}
	key := ManifestKey(s.now())

	existing, err := s.readObject(ctx, key)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

// readObject returns nil content for a missing key.
func (s *Store) readObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: s3 get %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", key, err)
	}
	return data, nil
}

var _ events.DeliveryHandler = (*Store)(nil)
