package notify

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
)

func TestConnectUnreachable(t *testing.T) {
	if _, err := Connect("nats://127.0.0.1:1"); err == nil {
		t.Errorf("Expected connection error")
	}
}

func TestPublishRoundTrip(t *testing.T) {
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	srv := natsserver.RunServer(&opts)
	defer srv.Shutdown()

	sub, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect subscriber: %v", err)
	}
	defer sub.Close()

	msgs, err := sub.SubscribeSync("undetected.test")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if err := sub.Flush(); err != nil {
		t.Fatalf("Failed to flush subscription: %v", err)
	}

	pub, err := Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect publisher: %v", err)
	}
	defer pub.Close()

	if err := pub.Publish("undetected.test", map[string]interface{}{"session_id": "abc"}); err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}

	msg, err := msgs.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("No message received: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("Failed to decode %s: %v", msg.Data, err)
	}
	if got["session_id"] != "abc" {
		t.Errorf("Unexpected payload %v", got)
	}
}

func TestPublishAfterServerGone(t *testing.T) {
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	srv := natsserver.RunServer(&opts)

	pub, err := Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect publisher: %v", err)
	}
	pub.nc.Close()
	srv.Shutdown()

	if err := pub.Publish("undetected.test", "late"); err == nil {
		t.Errorf("Expected error publishing on a closed connection")
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(map[string]interface{}{"session_id": "abc"})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if !strings.Contains(string(data), `"session_id":"abc"`) {
		t.Errorf("Unexpected payload %s", data)
	}

	if _, err := Encode(make(chan int)); err == nil {
		t.Errorf("Expected error for unsupported type")
	}
}

func TestCloseNil(t *testing.T) {
	var p *Publisher
	p.Close()
}
