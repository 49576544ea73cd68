package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/bothubai/bothub/internal/claims"
	"github.com/bothubai/bothub/internal/config"
	"github.com/bothubai/bothub/internal/users"
)

const (
	queueSize      = 64
	deliverTimeout = 10 * time.Second
)

type taskKind int

const (
	taskClaimRequested taskKind = iota
	taskClaimDecided
)

type task struct {
	kind        taskKind
	req         claims.Request
	ownerUserID string
}

// Dispatcher delivers claim notifications as Feishu interactive cards.
// Enqueueing never blocks; a full queue drops the notice with a log
// line. Without Feishu credentials the dispatcher is a no-op.
type Dispatcher struct {
	client *lark.Client
	users  *users.Service
	logger *slog.Logger
	queue  chan task
	done   chan struct{}
}

func NewDispatcher(log *slog.Logger, cfg config.FeishuConfig, usersSvc *users.Service) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		users:  usersSvc,
		logger: log.With(slog.String("service", "notify")),
		queue:  make(chan task, queueSize),
		done:   make(chan struct{}),
	}
	if cfg.AppID != "" {
		d.client = lark.NewClient(cfg.AppID, cfg.AppSecret)
	}
	return d
}

func (d *Dispatcher) Start(context.Context) error {
	go d.run()
	return nil
}

func (d *Dispatcher) Stop(ctx context.Context) error {
	close(d.queue)
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) ClaimRequested(req claims.Request, ownerUserID string) {
	d.enqueue(task{kind: taskClaimRequested, req: req, ownerUserID: ownerUserID})
}

func (d *Dispatcher) ClaimDecided(req claims.Request) {
	d.enqueue(task{kind: taskClaimDecided, req: req})
}

func (d *Dispatcher) enqueue(t task) {
	if d.client == nil {
		return
	}
	select {
	case d.queue <- t:
	default:
		d.logger.Warn("notification queue full, dropping notice",
			slog.String("request_id", t.req.ID))
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for t := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		if err := d.deliver(ctx, t); err != nil {
			d.logger.Error("notification delivery failed",
				slog.String("request_id", t.req.ID),
				slog.Any("error", err))
		}
		cancel()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, t task) error {
	var (
		recipientID string
		card        map[string]any
	)
	switch t.kind {
	case taskClaimRequested:
		recipientID = t.ownerUserID
		card = requestedCard(t.req)
	case taskClaimDecided:
		recipientID = t.req.RequesterID
		card = decidedCard(t.req)
	default:
		return fmt.Errorf("unknown notification kind %d", t.kind)
	}
	recipient, err := d.users.Get(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", recipientID, err)
	}
	if recipient.FeishuUserID == "" {
		return fmt.Errorf("recipient %s has no feishu user id", recipientID)
	}
	return d.send(ctx, recipient.FeishuUserID, card)
}

func (d *Dispatcher) send(ctx context.Context, feishuUserID string, card map[string]any) error {
	content, err := json.Marshal(card)
	if err != nil {
		return err
	}
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeUserId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(feishuUserID).
			MsgType(larkim.MsgTypeInteractive).
			Content(string(content)).
			Uuid(uuid.NewString()).
			Build()).
		Build()

	resp, err := d.client.Im.V1.Message.Create(ctx, req)
	if err != nil {
		return err
	}
	if resp == nil || !resp.Success() {
		code := 0
		msg := ""
		if resp != nil {
			code = resp.Code
			msg = resp.Msg
		}
		return fmt.Errorf("feishu send failed: %s (code: %d)", msg, code)
	}
	d.logger.Info("notification sent", slog.String("feishu_user_id", feishuUserID))
	return nil
}
