package main

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	json "github.com/bytedance/sonic"

	"sheetgrid/contracts"
)

const WebhookWorkersCount = 5

type SheetWebhooks map[string]string

type WebhookSendCommand struct {
	Webhook string
	Cell    *contracts.Cell
}

// WebhookDispatcher posts changed cells to subscribed URLs through a fixed
// pool of sender workers.
type WebhookDispatcher struct {
	queue chan WebhookSendCommand

	mu       sync.RWMutex
	closed   bool
	webhooks map[string]SheetWebhooks
}

func NewWebhookDispatcher() *WebhookDispatcher {
	return &WebhookDispatcher{
		queue:    make(chan WebhookSendCommand, 20),
		webhooks: map[string]SheetWebhooks{},
	}
}

func (manager *WebhookDispatcher) SetWebhookUrl(sheetId string, cellKey string, webhookUrl string) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if _, ok := manager.webhooks[sheetId]; !ok {
		manager.webhooks[sheetId] = SheetWebhooks{}
	}

	if webhookUrl == "" {
		delete(manager.webhooks[sheetId], cellKey)
	} else {
		manager.webhooks[sheetId][cellKey] = webhookUrl
	}
}

func (manager *WebhookDispatcher) GetWebhookUrl(sheetId string, cellKey string) string {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	return manager.webhooks[sheetId][cellKey]
}

func (manager *WebhookDispatcher) Notify(sheetId string, cells []*contracts.Cell) {
	manager.mu.RLock()
	_, subscribed := manager.webhooks[sheetId]
	manager.mu.RUnlock()
	if !subscribed {
		return
	}

	go manager.addToQueue(sheetId, cells)
}

// addToQueue holds a read lock around each send so Close cannot close the
// queue underneath it. Workers drain the queue without the lock, so a full
// queue still makes progress.
func (manager *WebhookDispatcher) addToQueue(sheetId string, cells []*contracts.Cell) {
	for _, cell := range cells {
		webhook := manager.GetWebhookUrl(sheetId, cell.Key)
		if webhook == "" {
			continue
		}

		manager.mu.RLock()
		if !manager.closed {
			manager.queue <- WebhookSendCommand{
				Webhook: webhook,
				Cell:    cell,
			}
		}
		manager.mu.RUnlock()
	}
}

func (manager *WebhookDispatcher) Start() {
	for i := 0; i < WebhookWorkersCount; i++ {
		go manager.runWebhookSenderWorker()
	}
}

func (manager *WebhookDispatcher) Close() {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if !manager.closed {
		manager.closed = true
		close(manager.queue)
	}
}

func (manager *WebhookDispatcher) runWebhookSenderWorker() {
	client := &http.Client{
		Timeout: time.Second * 5,
	}

	for command := range manager.queue {
		payload, _ := json.Marshal(command.Cell)
		response, err := client.Post(command.Webhook, "application/json", bytes.NewBuffer(payload))

		if err != nil {
			logger.Error("webhook send failed", "url", command.Webhook, "error", err)
			continue
		}
		if response.StatusCode >= 300 {
			logger.Warn("unexpected webhook response status", "url", command.Webhook, "status", response.Status)
		}
		_ = response.Body.Close()
	}
}
