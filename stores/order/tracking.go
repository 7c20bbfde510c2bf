package orderStore

import "github.com/junaidrashid-git/tomato-client/models"

// TrackingStep is one row of the delivery progress timeline.
type TrackingStep struct {
	Status  models.OrderStatus
	Label   string
	Reached bool
	Current bool
}

var stepLabels = map[models.OrderStatus]string{
	models.OrderStatusPlaced:         "Order Placed",
	models.OrderStatusConfirmed:      "Restaurant Confirmed",
	models.OrderStatusPreparing:      "Preparing your food",
	models.OrderStatusOutForDelivery: "Out for delivery",
	models.OrderStatusDelivered:      "Delivered",
}

// TrackingSteps computes the timeline for an order. A cancelled order has no
// step progression at all and yields nil; the view renders the cancellation
// notice instead. A status missing from the step list marks every step
// reached.
func TrackingSteps(order *models.Order) []TrackingStep {
	if order == nil || order.IsCancelled() {
		return nil
	}

	current := models.StatusStepIndex(order.Status)
	steps := make([]TrackingStep, len(models.StatusSteps))
	for i, status := range models.StatusSteps {
		steps[i] = TrackingStep{
			Status:  status,
			Label:   stepLabels[status],
			Reached: i <= current,
			Current: i == current,
		}
	}
	return steps
}
