package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/moments_bot/internal/collage"
	"github.com/Freeeeeet/moments_bot/internal/i18n"
	"github.com/Freeeeeet/moments_bot/internal/model"
	"go.uber.org/zap"
)

// Сколько истёкших моментов закрываем за один проход
const closeBatchSize = 50

type momentStore interface {
	GetOpenByChat(ctx context.Context, chatID int64, now time.Time) (*model.Moment, error)
	GetClosable(ctx context.Context, now time.Time, limit int) ([]*model.ClosableMoment, error)
	MarkShared(ctx context.Context, momentID string, sharedAt time.Time) error
}

type photoStore interface {
	Upsert(ctx context.Context, photo *model.MomentPhoto) error
	GetByMoment(ctx context.Context, momentID string) ([]*model.MomentPhoto, error)
}

type userStore interface {
	Upsert(ctx context.Context, user *model.User) error
	GetByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
}

type fileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type collageSender interface {
	SendCollage(ctx context.Context, chatID int64, caption string, png []byte) error
}

type MomentService struct {
	momentRepo momentStore
	photoRepo  photoStore
	userRepo   userStore
	files      fileDownloader
	sender     collageSender
	logger     *zap.Logger
	now        func() time.Time
}

func NewMomentService(
	momentRepo momentStore,
	photoRepo photoStore,
	userRepo userStore,
	files fileDownloader,
	sender collageSender,
	logger *zap.Logger,
) *MomentService {
	return &MomentService{
		momentRepo: momentRepo,
		photoRepo:  photoRepo,
		userRepo:   userRepo,
		files:      files,
		sender:     sender,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitPhoto принимает фото участника, отправленное в чат. Если открытого
// момента нет - фото молча игнорируется (false). Повторное фото того же
// участника заменяет предыдущее.
func (s *MomentService) SubmitPhoto(ctx context.Context, chatID int64, user *model.User, fileID string) (bool, error) {
	chatID = model.NormalizeChatID(chatID)
	now := s.now().UTC()

	moment, err := s.momentRepo.GetOpenByChat(ctx, chatID, now)
	if err != nil {
		return false, fmt.Errorf("get open moment: %w", err)
	}
	if moment == nil {
		return false, nil // Окно сбора закрыто или не открывалось
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		// Подпись на коллаже не критична для приёма фото
		s.logger.Error("Failed to upsert user",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	data, err := s.files.DownloadFile(ctx, fileID)
	if err != nil {
		return false, fmt.Errorf("download photo: %w", err)
	}

	photo := &model.MomentPhoto{
		MomentID: moment.ID,
		UserID:   user.ID,
		Data:     data,
	}

	if err := s.photoRepo.Upsert(ctx, photo); err != nil {
		return false, fmt.Errorf("save photo: %w", err)
	}

	s.logger.Info("Photo submitted",
		zap.String("moment_id", moment.ID),
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", user.ID),
	)

	return true, nil
}

// CloseElapsed закрывает моменты с истёкшим окном: рендерит коллаж из
// собранных фото и отправляет его в чат. Моменты без фото закрываются молча.
// Ошибка одного момента не мешает закрытию остальных.
func (s *MomentService) CloseElapsed(ctx context.Context) (int, error) {
	now := s.now().UTC()

	moments, err := s.momentRepo.GetClosable(ctx, now, closeBatchSize)
	if err != nil {
		return 0, fmt.Errorf("get closable moments: %w", err)
	}

	closedCount := 0
	for _, moment := range moments {
		if err := s.closeOne(ctx, moment); err != nil {
			s.logger.Error("Failed to close moment",
				zap.String("moment_id", moment.ID),
				zap.Int64("chat_id", moment.ChatID),
				zap.Error(err),
			)
			continue
		}
		closedCount++
	}

	return closedCount, nil
}

func (s *MomentService) closeOne(ctx context.Context, moment *model.ClosableMoment) error {
	photos, err := s.photoRepo.GetByMoment(ctx, moment.ID)
	if err != nil {
		return fmt.Errorf("get moment photos: %w", err)
	}

	if len(photos) == 0 {
		// Никто не успел - коллажа не будет
		return s.momentRepo.MarkShared(ctx, moment.ID, s.now().UTC())
	}

	userIDs := make([]int64, 0, len(photos))
	for _, photo := range photos {
		userIDs = append(userIDs, photo.UserID)
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("get photo authors: %w", err)
	}

	names := make(map[int64]string, len(users))
	for _, user := range users {
		names[user.ID] = user.FirstName
	}

	items := make([]collage.Item, 0, len(photos))
	for _, photo := range photos {
		items = append(items, collage.Item{
			Image: photo.Data,
			Label: names[photo.UserID],
		})
	}

	png, err := collage.Render(items, moment.CreatedAt)
	if err != nil {
		return fmt.Errorf("render collage: %w", err)
	}

	locale := i18n.GetLocale(moment.LanguageCode)
	if err := s.sender.SendCollage(ctx, moment.ChatID, i18n.T(locale, "bot.collageCaption"), png); err != nil {
		return fmt.Errorf("send collage: %w", err)
	}

	if err := s.momentRepo.MarkShared(ctx, moment.ID, s.now().UTC()); err != nil {
		return fmt.Errorf("mark moment shared: %w", err)
	}

	s.logger.Info("Moment closed, collage sent",
		zap.String("moment_id", moment.ID),
		zap.Int64("chat_id", moment.ChatID),
		zap.Int("photos", len(photos)),
	)

	return nil
}
