package handlers

// Replies sent by the command handlers.
const (
	msgWelcome = "Бот следит за статусом проверки домашней работы и пришлёт сообщение, когда статус изменится.\n" +
		"Команда /status покажет последнее известное состояние."
	msgHelp = "/status - последний статус и время последнего опроса\n" +
		"/help - список команд"
	msgNoNotifications = "уведомлений ещё не было"
	msgNeverPolled     = "ещё не выполнялся"
)
