package rabbitmq

// ExchangeEvents обменник доменных событий спортзала.
const ExchangeEvents = "gym.events"

// Ключи маршрутизации событий.
const (
	RoutingAttendanceCheckedIn   = "attendance.checked_in"
	RoutingAttendanceCheckedOut  = "attendance.checked_out"
	RoutingSubscriptionExpired   = "subscription.expired"
	RoutingSubscriptionActivated = "subscription.activated"
)

// Имена очередей.
const (
	QueueAttendanceEvents      = "attendance-events"
	QueueSubscriptionExpired   = "subscription-expired"
	QueueSubscriptionActivated = "subscription-activated"
)

// QueueConfig очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GymQueues возвращает все привязки очередей к ExchangeEvents.
// Одна очередь может быть привязана несколькими ключами.
func GymQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueAttendanceEvents, RoutingKey: RoutingAttendanceCheckedIn},
		{QueueName: QueueAttendanceEvents, RoutingKey: RoutingAttendanceCheckedOut},
		{QueueName: QueueSubscriptionExpired, RoutingKey: RoutingSubscriptionExpired},
		{QueueName: QueueSubscriptionActivated, RoutingKey: RoutingSubscriptionActivated},
	}
}
