package mailer

// Шаблоны писем
const (
	TemplateReservationConfirmed = "reservation_confirmed"
	TemplateReservationChanged   = "reservation_changed"
	TemplateReservationCancelled = "reservation_cancelled"
	TemplateNoShow               = "no_show"
)

// Message письмо для сервиса отправки. Текст формирует сервис по шаблону.
type Message struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Subject  string            `json:"subject"`
	Data     map[string]string `json:"data"`
}

// ErrorResponse модель ошибки сервиса отправки
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
