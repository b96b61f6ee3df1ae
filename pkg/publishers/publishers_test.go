package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/abhijeet6401/newslet/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	t.Setenv("HOOK_TOKEN", "abc")
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: " hook "
    type: HTTP
    events: [" Article.Stored ", "article.stored"]
    http:
      url: https://hooks.example.com/news
      headers:
        Authorization: "Bearer ${HOOK_TOKEN}"
        Empty: "  "
  - id: queue
    type: queue
    enabled: false
    queue:
      provider: aws-sqs
      aws:
        uri: https://sqs.us-east-1.amazonaws.com/1/news
        region: us-east-1
`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	hook, ok := reg.ByID("hook")
	if !ok {
		t.Fatalf("hook publisher missing")
	}
	if hook.Type != TypeHTTP || hook.HTTP.Method != "POST" || hook.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("defaults not applied: %+v", hook.HTTP)
	}
	if hook.HTTP.Headers["Authorization"] != "Bearer abc" {
		t.Fatalf("env not expanded: %v", hook.HTTP.Headers)
	}
	if _, ok := hook.HTTP.Headers["Empty"]; ok {
		t.Fatalf("empty header kept")
	}
	if len(hook.Events) != 1 || !hook.Accepts(EventArticleStored) || hook.Accepts(EventRunFinished) {
		t.Fatalf("event filter = %v", hook.Events)
	}

	if got := reg.Enabled(); len(got) != 1 || got[0].ID != "hook" {
		t.Fatalf("enabled = %+v", got)
	}
}

func TestLoadRegistryRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing url":  `{"publishers":[{"id":"a","type":"http","http":{}}]}`,
		"bad provider": `{"publishers":[{"id":"a","type":"queue","queue":{"provider":"azure"}}]}`,
		"half keys":    `{"publishers":[{"id":"a","type":"queue","queue":{"provider":"aws-sns","sns":{"topic_arn":"arn","region":"eu","access_key_id":"k"}}}]}`,
		"bad event":    `{"publishers":[{"id":"a","type":"http","events":["deleted"],"http":{"url":"https://x"}}]}`,
		"duplicate":    `{"publishers":[{"id":"a","type":"http","http":{"url":"https://x"}},{"id":"a","type":"http","http":{"url":"https://y"}}]}`,
		"empty":        `{"publishers":[]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadRegistry(writeFile(t, "p.json", body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestHTTPPublisherDelivers(t *testing.T) {
	var mu sync.Mutex
	var got Event
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		header = r.Header.Get("X-Newslet-Event")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL},
	}.normalized(), nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	art := domain.Article{Title: "Oil", URL: "https://x/oil", Source: "reuters"}
	evt := NewArticleEvent("run-1", art, time.Now())
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if header != EventArticleStored {
		t.Fatalf("event header = %q", header)
	}
	if got.ID != evt.ID || got.Article == nil || got.Article.URL != art.URL || got.Source != "reuters" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestHTTPPublisherRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{ID: "hook", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: srv.URL}}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}
	if err := pub.Publish(context.Background(), NewRunEvent("r", RunSummary{Phase: "completed"}, time.Now())); err == nil {
		t.Fatalf("expected error for 502")
	}
}

type recordingPublisher struct {
	id     string
	err    error
	events []Event
}

func (p *recordingPublisher) ID() string   { return p.id }
func (p *recordingPublisher) Type() string { return "test" }
func (p *recordingPublisher) Publish(_ context.Context, evt Event) error {
	p.events = append(p.events, evt)
	return p.err
}

func TestDispatcherFiltersAndIsolatesFailures(t *testing.T) {
	path := writeFile(t, "p.yaml", `
publishers:
  - id: broken
    type: test
    http: {url: "https://x"}
  - id: runs-only
    type: test
    events: [run.finished]
`)
	// "test" is not a built-in type, so validate against a registry built by hand.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	file, err := decodeConfigFile(raw, ".yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var cfgs []PublisherConfig
	for _, cfg := range file.Publishers {
		cfgs = append(cfgs, cfg.normalized())
	}
	reg, err := newConfigRegistry(cfgs)
	if err != nil {
		t.Fatalf("newConfigRegistry: %v", err)
	}

	built := map[string]*recordingPublisher{
		"broken":    {id: "broken", err: errors.New("down")},
		"runs-only": {id: "runs-only"},
	}
	builders := Builders{
		"test": func(_ context.Context, cfg PublisherConfig, _ Logger) (Publisher, error) {
			return built[cfg.ID], nil
		},
	}

	d, err := NewDispatcher(context.Background(), reg, builders, nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("Len = %d", d.Len())
	}

	err = d.Publish(context.Background(), NewArticleEvent("r", domain.Article{URL: "u"}, time.Now()))
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected broken publisher error, got %v", err)
	}
	if len(built["runs-only"].events) != 0 {
		t.Fatalf("filtered publisher received article event")
	}

	if err := d.Publish(context.Background(), NewRunEvent("r", RunSummary{}, time.Now())); err == nil {
		t.Fatalf("broken publisher should still fail")
	}
	if len(built["runs-only"].events) != 1 {
		t.Fatalf("run event not delivered")
	}
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	if err := d.Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("nil dispatcher: %v", err)
	}
	if d.Len() != 0 || d.Close() != nil {
		t.Fatalf("nil dispatcher should be empty")
	}
}

type fakeSQS struct {
	input *sqs.SendMessageInput
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSSenderAttributes(t *testing.T) {
	client := &fakeSQS{}
	s := &awsSQSSender{queueURL: "https://sqs/q", client: client, log: ensureLogger(nil)}

	evt := NewArticleEvent("run-9", domain.Article{URL: "u", Source: "cnbc"}, time.Now())
	if err := s.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}
	attrs := client.input.MessageAttributes
	if aws.ToString(attrs["source"].StringValue) != "cnbc" || aws.ToString(attrs["event_type"].StringValue) != EventArticleStored {
		t.Fatalf("attributes = %v", attrs)
	}
	if aws.ToString(client.input.QueueUrl) != "https://sqs/q" {
		t.Fatalf("queue url = %v", aws.ToString(client.input.QueueUrl))
	}
	var decoded Event
	if err := json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &decoded); err != nil || decoded.RunID != "run-9" {
		t.Fatalf("body = %v %v", decoded, err)
	}
}
