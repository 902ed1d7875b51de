package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaldent/clinic-site/internal/events"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

type putCall struct {
	key  string
	body []byte
}

type mockS3 struct {
	puts    []putCall
	objects map[string][]byte
	getErr  error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte)}
}

func (m *mockS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.puts = append(m.puts, putCall{key: *input.Key, body: body})
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func newTestStore(client S3API) *Store {
	s := NewStore(client, "vitaldent-archive", logging.NewWithFormat("error", "text", io.Discard))
	s.now = func() time.Time { return time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC) }
	return s
}

func requestedEntry(t *testing.T) events.OutboxEntry {
	t.Helper()
	payload, err := json.Marshal(events.AppointmentRequestedV1{
		AppointmentID:  "apt-9",
		PatientName:    "ANA",
		Phone:          "55 1234 5678",
		Email:          "ana@example.com",
		TreatmentNames: []string{"LIMPIEZA DENTAL"},
		ScheduledFor:   time.Date(2025, 3, 3, 16, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return events.OutboxEntry{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Type: events.TypeAppointmentRequested, Payload: payload}
}

func TestStoreArchivesRequestedEvent(t *testing.T) {
	mock := newMockS3()
	store := newTestStore(mock)

	require.NoError(t, store.Handle(context.Background(), requestedEntry(t)))
	require.Len(t, mock.puts, 2)

	assert.Equal(t, "appointments/v1/by-date/2025/03/02/apt-9-00000000-0000-0000-0000-000000000001.json", mock.puts[0].key)
	var record Record
	require.NoError(t, json.Unmarshal(mock.puts[0].body, &record))
	assert.Equal(t, "apt-9", record.AppointmentID)
	assert.Equal(t, events.TypeAppointmentRequested, record.EventType)

	assert.Equal(t, "appointments/v1/manifests/2025-03.jsonl", mock.puts[1].key)
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(mock.puts[1].body), &entry))
	assert.Equal(t, HashPhone("5512345678"), entry.PhoneHash)
	assert.Equal(t, "a***@example.com", entry.Email)
	assert.NotContains(t, string(mock.puts[1].body), "ana@example.com")
}

func TestManifestAppends(t *testing.T) {
	mock := newMockS3()
	store := newTestStore(mock)

	require.NoError(t, store.AppendManifest(context.Background(), ManifestEntry{EventID: "1"}))
	require.NoError(t, store.AppendManifest(context.Background(), ManifestEntry{EventID: "2"}))

	last := mock.puts[len(mock.puts)-1]
	assert.Len(t, bytes.Split(bytes.TrimSpace(last.body), []byte("\n")), 2)
}

func TestManifestReadFailureIsReported(t *testing.T) {
	mock := newMockS3()
	mock.getErr = errors.New("access denied")
	store := newTestStore(mock)

	assert.ErrorContains(t, store.AppendManifest(context.Background(), ManifestEntry{EventID: "1"}), "access denied")
	require.NoError(t, store.Handle(context.Background(), requestedEntry(t)))
	assert.Len(t, mock.puts, 1)
}

func TestStoreDisabledAndUnknownTypes(t *testing.T) {
	disabled := NewStore(nil, "", nil)
	assert.False(t, disabled.Enabled())
	assert.NoError(t, disabled.Handle(context.Background(), requestedEntry(t)))

	mock := newMockS3()
	store := newTestStore(mock)
	assert.NoError(t, store.Handle(context.Background(), events.OutboxEntry{ID: uuid.New(), Type: "other.v1"}))
	assert.Empty(t, mock.puts)
}

func TestPIIHelpers(t *testing.T) {
	assert.Equal(t, HashPhone("(55) 1234-5678"), HashPhone("5512345678"))
	assert.Len(t, HashPhone("5512345678"), 64)
	assert.Equal(t, "", MaskEmail(""))
	assert.Equal(t, "j***@mail.mx", MaskEmail("juan@mail.mx"))
}
