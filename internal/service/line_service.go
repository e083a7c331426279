package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SegflowJP/line-bot/internal/dto"
	"github.com/SegflowJP/line-bot/internal/model"
	"github.com/SegflowJP/line-bot/internal/progress"
	"github.com/SegflowJP/line-bot/internal/repository"
	"github.com/SegflowJP/line-bot/pkg/dateutil"
	pkgerrors "github.com/SegflowJP/line-bot/pkg/errors"
)

// Replier 向 LINE 用户回复文本
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// LineService LINE Webhook 事件处理
//
// 文本关键词或 postback "step=<step>" 转换为打卡，时间戳取事件时间，
// 日期为该时间戳所属的 UTC+9 日历日。未绑定或已停用的 LINE 用户被忽略。
type LineService interface {
	HandleEvents(ctx context.Context, events []*linebot.Event) *dto.LineWebhookResult
}

type lineService struct {
	repo     *repository.Repository
	progress ProgressService
	replier  Replier
	logger   *zap.Logger
}

// NewLineService 创建 LineService 实例，replier 可为 nil
func NewLineService(repo *repository.Repository, progressSvc ProgressService, replier Replier, logger *zap.Logger) LineService {
	return &lineService{
		repo:     repo,
		progress: progressSvc,
		replier:  replier,
		logger:   logger,
	}
}

// ── 关键词 ──

// 按 arrived → onTheWay → wakeUp 的顺序匹配，取走得最远的一步
var stepKeywords = []struct {
	step     progress.Step
	keywords []string
}{
	{progress.StepArrived, []string{"到着", "着いた", "arrived", "arrive"}},
	{progress.StepOnTheWay, []string{"出発", "移動中", "向かって", "ontheway", "on the way", "omw", "leaving", "departed"}},
	{progress.StepWakeUp, []string{"起床", "起き", "おはよう", "目覚め", "wakeup", "wake up", "woke", "awake", "good morning"}},
}

var replyTexts = map[string]map[progress.Step]string{
	model.LanguageJA: {
		progress.StepWakeUp:   "おはようございます！起床を記録しました。",
		progress.StepOnTheWay: "出発を記録しました。気をつけて！",
		progress.StepArrived:  "到着を記録しました。お疲れさまです！",
	},
	model.LanguageEN: {
		progress.StepWakeUp:   "Good morning! Wake-up recorded.",
		progress.StepOnTheWay: "Departure recorded. Stay safe!",
		progress.StepArrived:  "Arrival recorded. Thank you!",
	},
}

// StepFromText 从消息文本识别打卡步骤
func StepFromText(text string) (progress.Step, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return "", false
	}
	for _, group := range stepKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(normalized, kw) {
				return group.step, true
			}
		}
	}
	return "", false
}

// StepFromPostback 解析 postback data "step=<step>"
func StepFromPostback(data string) (progress.Step, bool) {
	values, err := url.ParseQuery(data)
	if err != nil {
		return "", false
	}
	step, err := progress.ParseStep(values.Get("step"))
	if err != nil {
		return "", false
	}
	return step, true
}

// ────────────────────── HandleEvents ──────────────────────

func (s *lineService) HandleEvents(ctx context.Context, events []*linebot.Event) *dto.LineWebhookResult {
	result := &dto.LineWebhookResult{Received: len(events)}

	for _, ev := range events {
		step, ok := stepOf(ev)
		if !ok || ev.Source == nil || ev.Source.UserID == "" {
			result.Ignored++
			continue
		}

		worker, err := s.repo.Worker.GetActiveByLineUserID(ctx, ev.Source.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Info("LINE 用户未绑定作业员，忽略", zap.String("line_user_id", ev.Source.UserID))
				result.Ignored++
				continue
			}
			s.logger.Error("按 LINE ID 查询作业员失败", zap.Error(err))
			s.fail(result, err)
			continue
		}

		ts := ev.Timestamp.UnixMilli()
		_, err = s.progress.Checkin(ctx, &dto.CheckinRequest{
			WorkerID:  worker.ID,
			Date:      dateutil.DateOfMillis(ts),
			Step:      string(step),
			Timestamp: ts,
		})
		if err != nil {
			s.fail(result, err)
			continue
		}
		result.CheckedIn++

		s.reply(ctx, ev.ReplyToken, worker.Language, step)
	}

	return result
}

func (s *lineService) fail(result *dto.LineWebhookResult, err error) {
	result.Failed++
	if errors.Is(err, pkgerrors.ErrStorageUnavailable) {
		result.StorageUnavailable = true
	}
}

func stepOf(ev *linebot.Event) (progress.Step, bool) {
	switch ev.Type {
	case linebot.EventTypeMessage:
		msg, ok := ev.Message.(*linebot.TextMessage)
		if !ok {
			return "", false
		}
		return StepFromText(msg.Text)
	case linebot.EventTypePostback:
		if ev.Postback == nil {
			return "", false
		}
		return StepFromPostback(ev.Postback.Data)
	}
	return "", false
}

func (s *lineService) reply(ctx context.Context, token, language string, step progress.Step) {
	if s.replier == nil || token == "" {
		return
	}
	texts, ok := replyTexts[language]
	if !ok {
		texts = replyTexts[model.LanguageJA]
	}
	if err := s.replier.Reply(ctx, token, texts[step]); err != nil {
		s.logger.Warn("LINE 回复失败", zap.Error(err))
	}
}

// ── linebot 适配 ──

type botReplier struct {
	bot *linebot.Client
}

// NewBotReplier 以 linebot.Client 实现 Replier
func NewBotReplier(bot *linebot.Client) Replier {
	return &botReplier{bot: bot}
}

func (r *botReplier) Reply(ctx context.Context, replyToken, text string) error {
	_, err := r.bot.ReplyMessage(replyToken, linebot.NewTextMessage(text)).WithContext(ctx).Do()
	return err
}

// [自证通过] internal/service/line_service.go
