package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/moments_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 30), uint8(y * 30), 120, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeMomentStore struct {
	openByChat map[int64]*model.Moment
	closable   []*model.ClosableMoment
	shared     map[string]time.Time
	sharedErr  error
}

func newFakeMomentStore() *fakeMomentStore {
	return &fakeMomentStore{
		openByChat: make(map[int64]*model.Moment),
		shared:     make(map[string]time.Time),
	}
}

func (f *fakeMomentStore) GetOpenByChat(_ context.Context, chatID int64, _ time.Time) (*model.Moment, error) {
	return f.openByChat[chatID], nil
}

func (f *fakeMomentStore) GetClosable(_ context.Context, _ time.Time, limit int) ([]*model.ClosableMoment, error) {
	if len(f.closable) > limit {
		return f.closable[:limit], nil
	}
	return f.closable, nil
}

func (f *fakeMomentStore) MarkShared(_ context.Context, momentID string, sharedAt time.Time) error {
	if f.sharedErr != nil {
		return f.sharedErr
	}
	f.shared[momentID] = sharedAt
	return nil
}

type fakePhotoStore struct {
	byMoment  map[string][]*model.MomentPhoto
	getErr    error
	upsertErr error
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{byMoment: make(map[string][]*model.MomentPhoto)}
}

func (f *fakePhotoStore) Upsert(_ context.Context, photo *model.MomentPhoto) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	existing := f.byMoment[photo.MomentID]
	for i, p := range existing {
		if p.UserID == photo.UserID {
			existing[i] = photo
			return nil
		}
	}
	f.byMoment[photo.MomentID] = append(existing, photo)
	return nil
}

func (f *fakePhotoStore) GetByMoment(_ context.Context, momentID string) ([]*model.MomentPhoto, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byMoment[momentID], nil
}

type fakeUserStore struct {
	users     map[int64]*model.User
	upsertErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*model.User)}
}

func (f *fakeUserStore) Upsert(_ context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByIDs(_ context.Context, ids []int64) ([]*model.User, error) {
	var found []*model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			found = append(found, u)
		}
	}
	return found, nil
}

type fakeDownloader struct {
	files map[string][]byte
	err   error
}

func (f *fakeDownloader) DownloadFile(_ context.Context, fileID string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", fileID)
	}
	return data, nil
}

type sentCollage struct {
	chatID  int64
	caption string
	png     []byte
}

type fakeCollageSender struct {
	sent    []sentCollage
	failFor map[int64]error
}

func (f *fakeCollageSender) SendCollage(_ context.Context, chatID int64, caption string, png []byte) error {
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	f.sent = append(f.sent, sentCollage{chatID: chatID, caption: caption, png: png})
	return nil
}

func newTestMomentService(
	moments *fakeMomentStore,
	photos *fakePhotoStore,
	users *fakeUserStore,
	files *fakeDownloader,
	sender *fakeCollageSender,
	now time.Time,
) *MomentService {
	svc := NewMomentService(moments, photos, users, files, sender, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestSubmitPhoto_AcceptsIntoOpenMoment(t *testing.T) {
	moments := newFakeMomentStore()
	moments.openByChat[-1] = &model.Moment{ID: "m1", ChatID: -1}

	photos := newFakePhotoStore()
	users := newFakeUserStore()
	files := &fakeDownloader{files: map[string][]byte{"file-1": []byte("jpeg-bytes")}}

	now := mustTime(t, "2025-06-10 10:10:00")
	svc := newTestMomentService(moments, photos, users, files, &fakeCollageSender{}, now)

	accepted, err := svc.SubmitPhoto(context.Background(), 1, &model.User{ID: 42, FirstName: "Ann"}, "file-1")
	require.NoError(t, err)
	assert.True(t, accepted)

	require.Len(t, photos.byMoment["m1"], 1)
	assert.Equal(t, int64(42), photos.byMoment["m1"][0].UserID)
	assert.Equal(t, []byte("jpeg-bytes"), photos.byMoment["m1"][0].Data)

	assert.Contains(t, users.users, int64(42))
}

func TestSubmitPhoto_IgnoredWithoutOpenMoment(t *testing.T) {
	moments := newFakeMomentStore()
	photos := newFakePhotoStore()
	files := &fakeDownloader{files: map[string][]byte{"file-1": []byte("jpeg-bytes")}}

	now := mustTime(t, "2025-06-10 10:10:00")
	svc := newTestMomentService(moments, photos, newFakeUserStore(), files, &fakeCollageSender{}, now)

	accepted, err := svc.SubmitPhoto(context.Background(), 1, &model.User{ID: 42}, "file-1")
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Empty(t, photos.byMoment)
}

func TestSubmitPhoto_RepeatReplacesPrevious(t *testing.T) {
	moments := newFakeMomentStore()
	moments.openByChat[-1] = &model.Moment{ID: "m1", ChatID: -1}

	photos := newFakePhotoStore()
	files := &fakeDownloader{files: map[string][]byte{
		"first":  []byte("first"),
		"second": []byte("second"),
	}}

	now := mustTime(t, "2025-06-10 10:10:00")
	svc := newTestMomentService(moments, photos, newFakeUserStore(), files, &fakeCollageSender{}, now)

	user := &model.User{ID: 42}
	_, err := svc.SubmitPhoto(context.Background(), 1, user, "first")
	require.NoError(t, err)
	_, err = svc.SubmitPhoto(context.Background(), 1, user, "second")
	require.NoError(t, err)

	require.Len(t, photos.byMoment["m1"], 1)
	assert.Equal(t, []byte("second"), photos.byMoment["m1"][0].Data)
}

func TestSubmitPhoto_DownloadFailure(t *testing.T) {
	moments := newFakeMomentStore()
	moments.openByChat[-1] = &model.Moment{ID: "m1", ChatID: -1}

	photos := newFakePhotoStore()
	files := &fakeDownloader{err: fmt.Errorf("telegram api: 502")}

	now := mustTime(t, "2025-06-10 10:10:00")
	svc := newTestMomentService(moments, photos, newFakeUserStore(), files, &fakeCollageSender{}, now)

	accepted, err := svc.SubmitPhoto(context.Background(), 1, &model.User{ID: 42}, "file-1")
	assert.Error(t, err)
	assert.False(t, accepted)
	assert.Empty(t, photos.byMoment)
}

func TestCloseElapsed_SendsCollageAndMarksShared(t *testing.T) {
	createdAt := mustTime(t, "2025-06-10 10:00:00")
	moments := newFakeMomentStore()
	moments.closable = []*model.ClosableMoment{
		{ID: "m1", ChatID: -1, CreatedAt: createdAt, LanguageCode: "en"},
	}

	photos := newFakePhotoStore()
	photos.byMoment["m1"] = []*model.MomentPhoto{
		{MomentID: "m1", UserID: 42, Data: pngBytes(t)},
	}

	users := newFakeUserStore()
	users.users[42] = &model.User{ID: 42, FirstName: "Ann"}

	sender := &fakeCollageSender{}
	now := mustTime(t, "2025-06-10 10:20:00")
	svc := newTestMomentService(moments, photos, users, &fakeDownloader{}, sender, now)

	closed, err := svc.CloseElapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(-1), sender.sent[0].chatID)
	assert.NotEmpty(t, sender.sent[0].png)

	assert.Contains(t, moments.shared, "m1")
}

func TestCloseElapsed_EmptyMomentClosedSilently(t *testing.T) {
	moments := newFakeMomentStore()
	moments.closable = []*model.ClosableMoment{
		{ID: "m1", ChatID: -1, CreatedAt: mustTime(t, "2025-06-10 10:00:00"), LanguageCode: "en"},
	}

	sender := &fakeCollageSender{}
	now := mustTime(t, "2025-06-10 10:20:00")
	svc := newTestMomentService(moments, newFakePhotoStore(), newFakeUserStore(), &fakeDownloader{}, sender, now)

	closed, err := svc.CloseElapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	assert.Empty(t, sender.sent)
	assert.Contains(t, moments.shared, "m1")
}

func TestCloseElapsed_FailureIsolatedPerMoment(t *testing.T) {
	createdAt := mustTime(t, "2025-06-10 10:00:00")
	moments := newFakeMomentStore()
	moments.closable = []*model.ClosableMoment{
		{ID: "m1", ChatID: -1, CreatedAt: createdAt, LanguageCode: "en"},
		{ID: "m2", ChatID: -2, CreatedAt: createdAt, LanguageCode: "en"},
	}

	photos := newFakePhotoStore()
	photos.byMoment["m1"] = []*model.MomentPhoto{{MomentID: "m1", UserID: 1, Data: pngBytes(t)}}
	photos.byMoment["m2"] = []*model.MomentPhoto{{MomentID: "m2", UserID: 2, Data: pngBytes(t)}}

	sender := &fakeCollageSender{failFor: map[int64]error{-1: fmt.Errorf("bot was kicked")}}
	now := mustTime(t, "2025-06-10 10:20:00")
	svc := newTestMomentService(moments, photos, newFakeUserStore(), &fakeDownloader{}, sender, now)

	closed, err := svc.CloseElapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	// Упавший момент остаётся открытым и будет закрыт следующим проходом
	assert.NotContains(t, moments.shared, "m1")
	assert.Contains(t, moments.shared, "m2")
}
