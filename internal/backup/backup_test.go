package backup

import (
	"context"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/patchworkhq/hearth/internal/database"
	"github.com/patchworkhq/hearth/internal/store"
)

type fakeS3 struct {
	puts    []string
	deletes []string
	failPut bool
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, context.DeadlineExceeded
	}
	f.puts = append(f.puts, *input.Key)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func setupManagerTest(t *testing.T, client s3Client, keep int) (*Manager, *store.BackupStore) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	backups := store.NewBackupStore(db)
	m := NewManager(Config{
		S3:         S3Config{Bucket: "test-bucket", AccessKey: "k", SecretKey: "s"},
		Passphrase: "test-passphrase",
		Keep:       keep,
	}, db, backups, slog.Default())
	m.client = client
	m.status.State = StateIdle

	return m, backups
}

func TestManagerDisabledWithoutConfig(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{}, db, store.NewBackupStore(db), slog.Default())
	if m.Enabled() {
		t.Error("manager should be disabled without S3 config")
	}
	if m.Status().State != StateDisabled {
		t.Errorf("state = %s, want disabled", m.Status().State)
	}

	if _, err := m.RunNow(context.Background()); err == nil {
		t.Error("RunNow should fail when disabled")
	}
}

func TestRunNowUploadsAndRecords(t *testing.T) {
	client := &fakeS3{}
	m, backups := setupManagerTest(t, client, 14)

	size, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	if size <= 0 {
		t.Errorf("size = %d, want > 0", size)
	}
	if len(client.puts) != 1 {
		t.Fatalf("puts = %d, want 1", len(client.puts))
	}

	records, err := backups.List()
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].ObjectKey != client.puts[0] {
		t.Errorf("recorded key %q != uploaded key %q", records[0].ObjectKey, client.puts[0])
	}
	if m.Status().State != StateIdle {
		t.Errorf("state = %s, want idle", m.Status().State)
	}
	if m.Status().LastBackup == nil {
		t.Error("expected last backup time to be set")
	}
}

func TestRunNowUploadFailureSetsError(t *testing.T) {
	client := &fakeS3{failPut: true}
	m, backups := setupManagerTest(t, client, 14)

	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}
	if m.Status().State != StateError {
		t.Errorf("state = %s, want error", m.Status().State)
	}

	records, err := backups.List()
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0 after failed upload", len(records))
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	client := &fakeS3{}
	m, backups := setupManagerTest(t, client, 2)

	for _, key := range []string{"hearth/old-1", "hearth/old-2", "hearth/old-3"} {
		if _, err := backups.Record(key, 10); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	if err := m.prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	records, err := backups.List()
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("records = %d, want 2 after prune", len(records))
	}
	if len(client.deletes) != 1 {
		t.Errorf("deletes = %d, want 1", len(client.deletes))
	}
}
