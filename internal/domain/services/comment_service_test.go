package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
)

// commentFixture 一个带条目和两名工程师的最小场景
type commentFixture struct {
	db       *gorm.DB
	svc      InterfaceCommentService
	logID    uint
	author   Principal
	stranger Principal
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()

	db := newTestDB(t)
	substation := seedSubstation(t, db, "SS-01")
	author := seedEngineer(t, db, "jsingh", substation.ID)
	stranger := seedEngineer(t, db, "gkaur", substation.ID)

	logbook := newTestLogbookService(db)
	logID, err := logbook.CreateEntry(SubstationPrincipal(substation.ID), &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "isolator maintenance completed",
	})
	require.NoError(t, err)

	return &commentFixture{
		db:       db,
		svc:      NewCommentService(db),
		logID:    logID,
		author:   EngineerPrincipal(author.ID, substation.ID),
		stranger: EngineerPrincipal(stranger.ID, substation.ID),
	}
}

func TestCreateComment_AndListWithAuthorName(t *testing.T) {
	f := newCommentFixture(t)

	id, err := f.svc.CreateComment(f.author, f.logID, "verified on site")
	require.NoError(t, err)
	require.NotZero(t, id)

	comments, err := f.svc.GetCommentsByEntry(f.author, f.logID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "verified on site", comments[0].CommentText)
	assert.Equal(t, "Engineer jsingh", comments[0].FullName)
	assert.False(t, comments[0].IsEdited)
}

func TestCommentWrites_EngineerOnly(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.svc.CreateComment(AdminPrincipal(1), f.logID, "admin note")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.CreateComment(SubstationPrincipal(1), f.logID, "operator note")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	id, err := f.svc.CreateComment(f.author, f.logID, "engineer note")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.UpdateComment(AdminPrincipal(1), id, "edit"), ErrPermissionDenied)
	assert.ErrorIs(t, f.svc.DeleteComment(AdminPrincipal(1), id), ErrPermissionDenied)

	var total int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestCreateComment_EntryMustExist(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.svc.CreateComment(f.author, 9999, "orphan")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestCreateComment_ForeignEntryLooksNonexistent(t *testing.T) {
	f := newCommentFixture(t)
	foreign := seedSubstation(t, f.db, "SS-02")
	outsider := seedEngineer(t, f.db, "outsider", foreign.ID)

	p := EngineerPrincipal(outsider.ID, foreign.ID)
	_, err := f.svc.CreateComment(p, f.logID, "should not land")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = f.svc.GetCommentsByEntry(p, f.logID)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestUpdateComment_OnlyOwner(t *testing.T) {
	f := newCommentFixture(t)

	id, err := f.svc.CreateComment(f.author, f.logID, "first draft")
	require.NoError(t, err)

	err = f.svc.UpdateComment(f.stranger, id, "rewritten by someone else")
	assert.ErrorIs(t, err, ErrCommentNotOwned)

	require.NoError(t, f.svc.UpdateComment(f.author, id, "final wording"))

	comments, err := f.svc.GetCommentsByEntry(f.author, f.logID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "final wording", comments[0].CommentText)
	assert.True(t, comments[0].IsEdited)
}

func TestDeleteComment_SoftDeleteHidesRow(t *testing.T) {
	f := newCommentFixture(t)

	id, err := f.svc.CreateComment(f.author, f.logID, "to be withdrawn")
	require.NoError(t, err)

	err = f.svc.DeleteComment(f.stranger, id)
	assert.ErrorIs(t, err, ErrCommentNotOwned)

	require.NoError(t, f.svc.DeleteComment(f.author, id))

	comments, err := f.svc.GetCommentsByEntry(f.author, f.logID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// 行仍然存在，只是被标记删除
	var comment models.Comment
	require.NoError(t, f.db.First(&comment, id).Error)
	assert.True(t, comment.IsDeleted)

	// 已删除的评论不能再被操作
	err = f.svc.UpdateComment(f.author, id, "resurrect")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
