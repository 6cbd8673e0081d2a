package push

import (
	"errors"
	"log/slog"

	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/store"
)

// Sender delivers a payload to one subscription.
type Sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// Result summarizes a fan-out: how many deliveries succeeded out of how
// many subscriptions were attempted.
type Result struct {
	Sent  int `json:"sent"`
	Total int `json:"total"`
}

// Dispatcher fans a payload out to every subscription of a user or
// household. A failed endpoint never aborts the batch; expired
// subscriptions are removed as they are discovered.
type Dispatcher struct {
	sender Sender
	subs   *store.PushStore
	logger *slog.Logger
}

func NewDispatcher(sender Sender, subs *store.PushStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		subs:   subs,
		logger: logger,
	}
}

func (d *Dispatcher) SendToUser(userID int64, payload Payload) Result {
	subs, err := d.subs.ListByUser(userID)
	if err != nil {
		d.logger.Error("list user subscriptions", "user_id", userID, "error", err)
		return Result{}
	}
	return d.fanOut(subs, payload)
}

func (d *Dispatcher) SendToHousehold(householdID int64, payload Payload) Result {
	subs, err := d.subs.ListByHousehold(householdID)
	if err != nil {
		d.logger.Error("list household subscriptions", "household_id", householdID, "error", err)
		return Result{}
	}
	return d.fanOut(subs, payload)
}

func (d *Dispatcher) fanOut(subs []model.PushSubscription, payload Payload) Result {
	result := Result{Total: len(subs)}
	for i := range subs {
		sub := &subs[i]
		err := d.sender.Send(sub, payload)
		if err == nil {
			result.Sent++
			continue
		}
		if errors.Is(err, ErrExpired) {
			if delErr := d.subs.DeleteByEndpoint(sub.Endpoint); delErr != nil {
				d.logger.Error("delete expired subscription", "endpoint", sub.Endpoint, "error", delErr)
			}
			continue
		}
		d.logger.Warn("push delivery failed", "endpoint", sub.Endpoint, "error", err)
	}
	return result
}
