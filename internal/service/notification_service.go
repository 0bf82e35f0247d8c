package service

import (
	"encoding/json"

	"roost/internal/models"
	"roost/internal/repository"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskNotifySend is the queue task type for delivering one notification.
const TaskNotifySend = "notify:send"

// NotifyPayload is the asynq task body handed to the delivery worker.
type NotifyPayload struct {
	NotificationID uint   `json:"notification_id"`
	UserID         uint   `json:"user_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Body           string `json:"body"`
}

// NotificationService is the outbox for transition side effects. Callers
// invoke it only after the transition's database transaction has committed;
// a delivery failure is logged and never rolls anything back.
type NotificationService struct {
	repo   *repository.NotificationRepository
	client *asynq.Client // nil when no queue is configured (tests, dev)
	log    *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, client *asynq.Client, log *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, client: client, log: log}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
	if err := s.repo.Create(n); err != nil {
		s.log.Warn("notification write failed", zap.Uint("user_id", userID), zap.String("type", notifType), zap.Error(err))
		return
	}
	s.enqueue(n)
}

func (s *NotificationService) enqueue(n *models.Notification) {
	if s.client == nil {
		return
	}
	payload, err := json.Marshal(NotifyPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Body:           n.Body,
	})
	if err != nil {
		return
	}
	if _, err := s.client.Enqueue(asynq.NewTask(TaskNotifySend, payload)); err != nil {
		s.log.Warn("notification enqueue failed", zap.Uint("notification_id", n.ID), zap.Error(err))
	}
}

func (s *NotificationService) NotifyBookingPaid(hostID, bookingID uint) {
	s.Notify(hostID, "BOOKING_PAID", "New booking request",
		"A guest has paid for a booking. Approve or reject it.",
		map[string]interface{}{"booking_id": bookingID})
}

func (s *NotificationService) NotifyBookingConfirmed(guestID, bookingID uint) {
	s.Notify(guestID, "BOOKING_CONFIRMED", "Booking confirmed",
		"The host approved your booking.",
		map[string]interface{}{"booking_id": bookingID})
}

func (s *NotificationService) NotifyBookingRejected(guestID, bookingID uint) {
	s.Notify(guestID, "BOOKING_REJECTED", "Booking declined",
		"The host declined your booking. Your authorization was released.",
		map[string]interface{}{"booking_id": bookingID})
}

func (s *NotificationService) NotifyBookingCancelled(userID, bookingID uint) {
	s.Notify(userID, "BOOKING_CANCELLED", "Booking cancelled",
		"The booking was cancelled and the payment reversed.",
		map[string]interface{}{"booking_id": bookingID})
}

func (s *NotificationService) NotifyReviewRequested(guestID, bookingID uint) {
	s.Notify(guestID, "REVIEW_REQUESTED", "How was your experience?",
		"Your experience has ended. Leave the host a review.",
		map[string]interface{}{"booking_id": bookingID})
}

func (s *NotificationService) NotifyPayoutSent(userID uint, amountCents int64, reference string) {
	s.Notify(userID, "PAYOUT_SENT", "Payout on the way",
		"Your pending balance has been disbursed.",
		map[string]interface{}{"amount_cents": amountCents, "reference": reference})
}
