package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
	"github.com/manasvi0103/ai-blog-platform/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPersistence(t *testing.T) (*Persistence, context.Context) {
	t.Helper()

	return NewPersistence("file://" + t.TempDir()), context.Background()
}

func TestPersistence_HealthCheck(t *testing.T) {
	p, ctx := setupPersistence(t)
	require.NoError(t, p.HealthCheck(ctx))

	missing := NewPersistence(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, missing.HealthCheck(ctx), os.ErrNotExist)
}

func TestTenantConfigRepository(t *testing.T) {
	p, ctx := setupPersistence(t)
	repo := p.TenantConfigs()

	_, err := repo.GetByTenantID(ctx, "acme")
	require.Error(t, err)
	assert.True(t, persistence.IsTenantConfigNotFound(err))

	acme := testutil.CreateTestTenantConfig("acme", "https://acme.example")
	inactive := testutil.CreateTestTenantConfig("beta", "https://beta.example")
	inactive.IsActive = false

	require.NoError(t, repo.Save(ctx, acme))
	require.NoError(t, repo.Save(ctx, inactive))

	loaded, err := repo.GetByTenantID(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "xxxx yyyy zzzz", loaded.AppPassword)
	assert.Equal(t, models.ConnectionStatusNotTested, loaded.ConnectionStatus)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "acme", active[0].TenantID)

	testedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateConnectionStatus(ctx, "acme", models.ConnectionStatusConnected, testedAt))

	loaded, err = repo.GetByTenantID(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusConnected, loaded.ConnectionStatus)
	require.NotNil(t, loaded.LastTestedAt)
	assert.True(t, testedAt.Equal(*loaded.LastTestedAt))

	err = repo.UpdateConnectionStatus(ctx, "unknown", models.ConnectionStatusFailed, testedAt)
	assert.True(t, persistence.IsTenantConfigNotFound(err))
}

func TestDraftRepository(t *testing.T) {
	p, ctx := setupPersistence(t)
	repo := p.Drafts()

	draft := testutil.CreateTestDraft()
	require.NoError(t, repo.Save(ctx, draft))

	loaded, err := repo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.Title, loaded.Title)
	require.Len(t, loaded.Blocks, 3)
	assert.Equal(t, draft.ID, loaded.Blocks[0].DraftID)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, persistence.IsDraftNotFound(err))

	_, err = repo.GetByID(ctx, "../escape")
	assert.ErrorIs(t, err, persistence.ErrInvalidID)
}

func TestPublishRecordRepository_Commit(t *testing.T) {
	p, ctx := setupPersistence(t)

	draft := testutil.CreateTestDraft()
	require.NoError(t, p.Drafts().Save(ctx, draft))

	_, err := p.PublishRecords().GetByDraftID(ctx, draft.ID)
	assert.True(t, persistence.IsPublishRecordNotFound(err))

	record := &models.DraftPublishRecord{
		DraftID:         draft.ID,
		CMSPostID:       42,
		EditURL:         "https://acme.example/wp-admin/post.php?post=42&action=edit",
		DeliveryMethod:  models.DeliveryMethodDirect,
		Status:          models.PublishRecordDraftCreated,
		LastAttemptedAt: time.Now().UTC(),
	}

	require.NoError(t, p.PublishRecords().Commit(ctx, record, models.DraftStatusPublished))

	stored, err := p.PublishRecords().GetByDraftID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stored.CMSPostID)
	assert.Equal(t, models.PublishRecordDraftCreated, stored.Status)

	loaded, err := p.Drafts().GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusPublished, loaded.Status)
}

func TestPublishRecordRepository_CommitUnknownDraft(t *testing.T) {
	p, ctx := setupPersistence(t)

	err := p.PublishRecords().Commit(ctx, &models.DraftPublishRecord{DraftID: "ghost", CMSPostID: 1}, models.DraftStatusPublished)
	require.Error(t, err)
	assert.True(t, persistence.IsDraftNotFound(err))

	_, err = p.PublishRecords().GetByDraftID(ctx, "ghost")
	assert.True(t, persistence.IsPublishRecordNotFound(err))
}

func TestPublishRecordRepository_CommitRollsBackRecord(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	p, ctx := setupPersistence(t)

	draft := testutil.CreateTestDraft()
	require.NoError(t, p.Drafts().Save(ctx, draft))

	draftsPath := filepath.Join(p.root, draftsDir)
	require.NoError(t, os.Chmod(draftsPath, 0o500))
	t.Cleanup(func() { _ = os.Chmod(draftsPath, 0o750) })

	err := p.PublishRecords().Commit(ctx, &models.DraftPublishRecord{DraftID: draft.ID, CMSPostID: 7}, models.DraftStatusPublished)
	require.Error(t, err)

	_, err = p.PublishRecords().GetByDraftID(ctx, draft.ID)
	assert.True(t, persistence.IsPublishRecordNotFound(err))
}

func TestPublishRecordRepository_RecordFailureKeepsPostReference(t *testing.T) {
	p, ctx := setupPersistence(t)

	draft := testutil.CreateTestDraft()
	require.NoError(t, p.Drafts().Save(ctx, draft))

	attempted := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.PublishRecords().RecordFailure(ctx, draft.ID, models.ErrorKindAuthFailed, attempted))

	record, err := p.PublishRecords().GetByDraftID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublishRecordPublishFailed, record.Status)
	assert.Zero(t, record.CMSPostID)

	require.NoError(t, p.PublishRecords().Commit(ctx, &models.DraftPublishRecord{DraftID: draft.ID, CMSPostID: 9, Status: models.PublishRecordDraftCreated}, models.DraftStatusPublished))
	require.NoError(t, p.PublishRecords().RecordFailure(ctx, draft.ID, models.ErrorKindRemoteUnreachable, attempted))

	record, err = p.PublishRecords().GetByDraftID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), record.CMSPostID)
	assert.Equal(t, models.ErrorKindRemoteUnreachable, record.ErrorKind)
}
