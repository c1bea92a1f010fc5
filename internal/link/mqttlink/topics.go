package mqttlink

import "fmt"

// DefaultPrefix is the root of every bridge topic.
const DefaultPrefix = "bedjet"

// Request kinds answered on the response topic.
const (
	requestAdapters = "adapters"
	requestScan     = "scan"
)

// Topics builds bridge topic names under a prefix.
//
//	t := Topics{Prefix: "bedjet"}
//	t.Command("hci0", "dev-1") // "bedjet/command/hci0/dev-1"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultPrefix
	}
	return t.Prefix
}

// Request is where the bridge listens for request/response calls of a kind.
func (t Topics) Request(kind string) string {
	return fmt.Sprintf("%s/request/%s", t.prefix(), kind)
}

// Response is where the bridge answers a request.
func (t Topics) Response(requestID string) string {
	return fmt.Sprintf("%s/response/%s", t.prefix(), requestID)
}

// AllResponses matches every response topic.
func (t Topics) AllResponses() string {
	return fmt.Sprintf("%s/response/+", t.prefix())
}

func (t Topics) Connect(adapter, deviceID string) string {
	return fmt.Sprintf("%s/connect/%s/%s", t.prefix(), adapter, deviceID)
}

func (t Topics) Disconnect(adapter, deviceID string) string {
	return fmt.Sprintf("%s/disconnect/%s/%s", t.prefix(), adapter, deviceID)
}

func (t Topics) Command(adapter, deviceID string) string {
	return fmt.Sprintf("%s/command/%s/%s", t.prefix(), adapter, deviceID)
}

// AllAcks matches command acknowledgements for every adapter and device.
func (t Topics) AllAcks() string {
	return fmt.Sprintf("%s/ack/+/+", t.prefix())
}

// Status matches status pushes for every device behind adapter.
func (t Topics) Status(adapter string) string {
	return fmt.Sprintf("%s/status/%s/+", t.prefix(), adapter)
}
