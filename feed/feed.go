package feed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/junaidrashid-git/tomato-client/models"
)

// OrderApplier receives each order event read off the socket. The order
// store implements it with an upsert into the admin collection.
type OrderApplier interface {
	ApplyOrderEvent(models.Order)
}

// Client keeps a websocket open to the backend's order events endpoint and
// feeds every pushed order into the applier. Built for the admin live view.
type Client struct {
	url     string
	jar     http.CookieJar
	applier OrderApplier

	// ReconnectWait is the pause between dial attempts.
	ReconnectWait time.Duration
}

func New(wsURL string, jar http.CookieJar, applier OrderApplier) *Client {
	return &Client{
		url:           wsURL,
		jar:           jar,
		applier:       applier,
		ReconnectWait: 3 * time.Second,
	}
}

// Run connects and reads until the context is cancelled, redialing after
// connection loss. It always returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.readLoop(ctx); err != nil && ctx.Err() == nil {
			log.Printf("order feed disconnected: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.ReconnectWait):
		}
	}
}

func (c *Client) readLoop(ctx context.Context) error {
	dialer := websocket.Dialer{
		Jar:              c.jar,
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var order models.Order
		if err := json.Unmarshal(data, &order); err != nil {
			log.Printf("order feed: bad event payload: %v", err)
			continue
		}
		c.applier.ApplyOrderEvent(order)
	}
}
