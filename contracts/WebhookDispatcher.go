package contracts

type WebhookDispatcher interface {
	SetWebhookUrl(sheetId string, cellKey string, webhookUrl string)
	GetWebhookUrl(sheetId string, cellKey string) string
	Notify(sheetId string, cells []*Cell)
	Start()
	Close()
}
