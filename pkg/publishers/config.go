package publishers

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// Publisher types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// PublisherConfig is one entry of the publishers file.
type PublisherConfig struct {
	ID      string                `json:"id" yaml:"id"`
	Type    string                `json:"type" yaml:"type"`
	Enabled *bool                 `json:"enabled" yaml:"enabled"`
	Events  []string              `json:"events" yaml:"events"` // empty means every event
	Queue   *QueuePublisherConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPPublisherConfig  `json:"http" yaml:"http"`
}

// QueuePublisherConfig selects a cloud queue provider.
type QueuePublisherConfig struct {
	Provider string                 `json:"provider" yaml:"provider"`
	AWS      *AWSSQSPublisherConfig `json:"aws" yaml:"aws"`
	SNS      *AWSSNSPublisherConfig `json:"sns" yaml:"sns"`
	GCP      *GCPQueueConfig        `json:"gcp" yaml:"gcp"`
}

// StaticKeys are optional AWS credentials. When both are empty the default
// credential chain is used.
type StaticKeys struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

type AWSSQSPublisherConfig struct {
	QueueURL   string `json:"uri" yaml:"uri"`
	Region     string `json:"region" yaml:"region"`
	StaticKeys `yaml:",inline"`
}

type AWSSNSPublisherConfig struct {
	TopicARN   string `json:"topic_arn" yaml:"topic_arn"`
	Region     string `json:"region" yaml:"region"`
	StaticKeys `yaml:",inline"`
}

// GCPQueueConfig names a Pub/Sub topic. CredentialsFile is optional.
type GCPQueueConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPPublisherConfig is a webhook sink.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// EnabledValue reports the enabled flag, true when unset.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// Accepts reports whether events of type typ should reach this publisher.
func (cfg PublisherConfig) Accepts(typ string) bool {
	return len(cfg.Events) == 0 || slices.Contains(cfg.Events, typ)
}

// normalized returns a copy with whitespace trimmed, case folded and
// defaults applied. Nested configs are copied, never shared.
func (cfg PublisherConfig) normalized() PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		on := true
		cfg.Enabled = &on
	}

	var events []string
	for _, e := range cfg.Events {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !slices.Contains(events, e) {
			events = append(events, e)
		}
	}
	cfg.Events = events

	if cfg.Queue != nil {
		q := *cfg.Queue
		q.Provider = strings.ToLower(strings.TrimSpace(q.Provider))
		if q.AWS != nil {
			a := *q.AWS
			a.QueueURL = strings.TrimSpace(a.QueueURL)
			a.Region = strings.TrimSpace(a.Region)
			a.StaticKeys = a.StaticKeys.trimmed()
			q.AWS = &a
		}
		if q.SNS != nil {
			s := *q.SNS
			s.TopicARN = strings.TrimSpace(s.TopicARN)
			s.Region = strings.TrimSpace(s.Region)
			s.StaticKeys = s.StaticKeys.trimmed()
			q.SNS = &s
		}
		if q.GCP != nil {
			g := *q.GCP
			g.ProjectID = strings.TrimSpace(g.ProjectID)
			g.Topic = strings.TrimSpace(g.Topic)
			g.CredentialsFile = strings.TrimSpace(g.CredentialsFile)
			q.GCP = &g
		}
		cfg.Queue = &q
	}

	if cfg.HTTP != nil {
		h := *cfg.HTTP
		h.URL = strings.TrimSpace(h.URL)
		h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
		if h.Method == "" {
			h.Method = httpDefaultMethod
		}
		if h.TimeoutSeconds <= 0 {
			h.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		h.Headers = cleanHeaders(h.Headers)
		cfg.HTTP = &h
	}
	return cfg
}

func (k StaticKeys) trimmed() StaticKeys {
	return StaticKeys{
		AccessKeyID:     strings.TrimSpace(k.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(k.SecretAccessKey),
	}
}

// cleanHeaders drops headers whose name or value is blank.
func cleanHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validate expects a normalized config.
func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	for _, e := range cfg.Events {
		if !knownEventType(e) {
			return fmt.Errorf("event type %q not supported for publisher %q", e, cfg.ID)
		}
	}

	var err error
	switch cfg.Type {
	case "":
		err = errors.New("type is required")
	case TypeHTTP:
		err = cfg.HTTP.validate()
	case TypeQueue:
		err = cfg.Queue.validate()
	default:
		err = fmt.Errorf("type %q not supported", cfg.Type)
	}
	if err != nil {
		return fmt.Errorf("publisher %q: %w", cfg.ID, err)
	}
	return nil
}

func (h *HTTPPublisherConfig) validate() error {
	if h == nil {
		return errors.New("http config required")
	}
	if h.URL == "" {
		return errors.New("http.url is required")
	}
	return nil
}

func (q *QueuePublisherConfig) validate() error {
	if q == nil {
		return errors.New("queue config required")
	}
	switch q.Provider {
	case QueueProviderAWSSQS:
		if q.AWS == nil {
			return errors.New("queue.aws config required")
		}
		return requireAll(map[string]string{"aws.uri": q.AWS.QueueURL, "aws.region": q.AWS.Region}, q.AWS.StaticKeys)
	case QueueProviderAWSSNS:
		if q.SNS == nil {
			return errors.New("queue.sns config required")
		}
		return requireAll(map[string]string{"sns.topic_arn": q.SNS.TopicARN, "sns.region": q.SNS.Region}, q.SNS.StaticKeys)
	case QueueProviderGCP:
		if q.GCP == nil {
			return errors.New("queue.gcp config required")
		}
		return requireAll(map[string]string{"gcp.project_id": q.GCP.ProjectID, "gcp.topic": q.GCP.Topic}, StaticKeys{})
	default:
		return fmt.Errorf("queue provider %q not supported", q.Provider)
	}
}

// requireAll checks mandatory fields and that static keys come in pairs.
func requireAll(fields map[string]string, keys StaticKeys) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if fields[name] == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if (keys.AccessKeyID == "") != (keys.SecretAccessKey == "") {
		return errors.New("access_key_id and secret_access_key must be set together")
	}
	return nil
}
