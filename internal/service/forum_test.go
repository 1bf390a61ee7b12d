package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/imageboard/internal/apperror"
	"github.com/sakif/imageboard/internal/model"
)

func createTestThread(t *testing.T, env *testEnv) *model.Thread {
	t.Helper()
	thread, err := env.forum.CreateThread(context.Background(), NewThread{Title: "Hello", Description: "World"})
	require.NoError(t, err)
	return thread
}

func TestCreateThread_AttachesImageOnlyWithURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	withImage, err := env.forum.CreateThread(ctx, NewThread{
		Title: "t", Description: "d",
		ImageURL: "https://img.test/img-1", PublicID: "img-1", Date: "2024-01-02 09:00:00",
	})
	require.NoError(t, err)
	require.NotNil(t, withImage.Image)
	assert.Equal(t, model.UploadRecord{URL: "https://img.test/img-1", PublicID: "img-1", Date: "2024-01-02 09:00:00"}, *withImage.Image)

	withoutURL, err := env.forum.CreateThread(ctx, NewThread{Title: "t", Description: "d", PublicID: "img-1"})
	require.NoError(t, err)
	assert.Nil(t, withoutURL.Image)
	assert.Equal(t, 2, withoutURL.ID)
}

func TestCreateThread_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.forum.CreateThread(context.Background(), NewThread{Title: "only title"})

	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestListAndGetThread(t *testing.T) {
	env := newTestEnv(t)
	created := createTestThread(t, env)

	threads := env.forum.ListThreads(context.Background())
	require.Len(t, threads, 1)

	found, err := env.forum.GetThread(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, found.Title)
}

func TestAddComment_Service(t *testing.T) {
	env := newTestEnv(t)
	thread := createTestThread(t, env)

	comment, err := env.forum.AddComment(context.Background(), thread.ID, "", "first!")

	require.NoError(t, err)
	assert.Equal(t, model.AnonymousUsername, comment.Username)
	assert.Equal(t, "2024-01-02 10:00:00", comment.CreatedAt)
}

func TestAddReply_WithImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	thread := createTestThread(t, env)
	_, err := env.forum.AddComment(ctx, thread.ID, "", "comment")
	require.NoError(t, err)

	reply, err := env.forum.AddReply(ctx, NewReply{
		ThreadID: thread.ID,
		Content:  "look at this",
		Image:    &ImageUpload{Filename: "dog.png", Body: strings.NewReader("dog")},
	})

	require.NoError(t, err)
	require.NotNil(t, reply.Image)
	assert.Equal(t, "img-1", reply.Image.PublicID)
	assert.Equal(t, "2024-01-02 10:00:00", reply.Image.Date)

	history := env.history.Load(ctx)
	require.Len(t, history, 1, "reply images are recorded in the upload history")
	assert.Equal(t, "img-1", history[0].PublicID)
}

func TestAddReply_WithoutImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	thread := createTestThread(t, env)
	_, err := env.forum.AddComment(ctx, thread.ID, "", "comment")
	require.NoError(t, err)

	reply, err := env.forum.AddReply(ctx, NewReply{ThreadID: thread.ID, Username: "mei", Content: "text only"})

	require.NoError(t, err)
	assert.Nil(t, reply.Image)
	assert.Equal(t, "mei", reply.Username)
	assert.Zero(t, env.host.uploads)
}

func TestAddReply_RejectedBeforeUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	thread := createTestThread(t, env)
	_, err := env.forum.AddComment(ctx, thread.ID, "", "comment")
	require.NoError(t, err)

	tests := []struct {
		name    string
		reply   NewReply
		wantErr error
	}{
		{
			name:    "empty content",
			reply:   NewReply{ThreadID: thread.ID, Content: ""},
			wantErr: apperror.ErrValidation,
		},
		{
			name:    "unknown thread",
			reply:   NewReply{ThreadID: 42, Content: "x"},
			wantErr: apperror.ErrNotFound,
		},
		{
			name:    "comment index past the end",
			reply:   NewReply{ThreadID: thread.ID, CommentIndex: 1, Content: "x"},
			wantErr: apperror.ErrIndex,
		},
		{
			name:    "negative comment index",
			reply:   NewReply{ThreadID: thread.ID, CommentIndex: -1, Content: "x"},
			wantErr: apperror.ErrIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.reply.Image = &ImageUpload{Filename: "x.png", Body: strings.NewReader("x")}

			_, err := env.forum.AddReply(ctx, tt.reply)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, env.host.uploads, "no image may be uploaded for a rejected reply")
		})
	}
}

func TestAddReply_UploadFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	thread := createTestThread(t, env)
	_, err := env.forum.AddComment(ctx, thread.ID, "", "comment")
	require.NoError(t, err)
	env.host.NoPublicID = true

	_, err = env.forum.AddReply(ctx, NewReply{
		ThreadID: thread.ID,
		Content:  "x",
		Image:    &ImageUpload{Filename: "x.png", Body: strings.NewReader("x")},
	})

	assert.ErrorIs(t, err, apperror.ErrUpload)
	found, err := env.forum.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Comments[0].Replies)
}

func TestToggleLike_Service(t *testing.T) {
	env := newTestEnv(t)
	thread := createTestThread(t, env)
	ctx := context.Background()

	first, err := env.forum.ToggleLike(ctx, thread.ID)
	require.NoError(t, err)
	second, err := env.forum.ToggleLike(ctx, thread.ID)
	require.NoError(t, err)

	assert.Equal(t, model.LikeState{Likes: 1, Liked: true}, *first)
	assert.Equal(t, model.LikeState{Likes: 0, Liked: false}, *second)

	_, err = env.forum.ToggleLike(ctx, 99)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
