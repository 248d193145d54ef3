package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopic           = errors.New("pubsub notification topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client owns the Pub/Sub connection used to hand receipt and thank-you
// emails to the mailer service.
type Client struct {
	ps      *pubsub.Client
	project string
	cfg     config.PubSubConfig
}

// NewClient dials Pub/Sub for the configured project. PUBSUB_EMULATOR_HOST is
// honored by the underlying library.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	if TopicResourceName(project, cfg.NotificationTopic) == "" {
		return nil, errNoTopic
	}

	ps, err := pubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{ps: ps, project: project, cfg: cfg}

	if cfg.VerifyTopic {
		if err := c.checkTopic(ctx); err != nil {
			_ = ps.Close()
			return nil, err
		}
	}
	if logg != nil {
		ctx = logg.WithField(ctx, "topic", cfg.NotificationTopic)
		logg.Info(ctx, "pubsub client initialized")
	}
	return c, nil
}

func (c *Client) checkTopic(ctx context.Context) error {
	topic := c.cfg.NotificationTopic
	_, err := c.ps.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: TopicResourceName(c.project, topic),
	})
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("topic %q does not exist in project %s", topic, c.project)
	default:
		return fmt.Errorf("checking topic %q: %w", topic, err)
	}
}

// Publisher returns a handle for a topic id or full resource name, or nil when
// the name cannot be resolved.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.ps == nil {
		return nil
	}
	full := TopicResourceName(c.project, name)
	if full == "" {
		return nil
	}
	return c.ps.Publisher(full)
}

// NotificationPublisher returns the email request publisher tuned for low,
// bursty volume: short batching delay and a bounded publish timeout.
func (c *Client) NotificationPublisher() *pubsub.Publisher {
	if c == nil {
		return nil
	}
	pub := c.Publisher(c.cfg.NotificationTopic)
	if pub == nil {
		return nil
	}
	if c.cfg.BatchDelay > 0 {
		pub.PublishSettings.DelayThreshold = c.cfg.BatchDelay
	}
	if c.cfg.PublishTimeout > 0 {
		pub.PublishSettings.Timeout = c.cfg.PublishTimeout
	}
	return pub
}

// Ping re-checks the notification topic.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.ps == nil {
		return errNotInitialized
	}
	return c.checkTopic(ctx)
}

func (c *Client) Close() error {
	if c == nil || c.ps == nil {
		return nil
	}
	return c.ps.Close()
}

// TopicResourceName expands a bare topic id into projects/<p>/topics/<id>.
// Names that are already fully qualified pass through.
func TopicResourceName(projectID, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/topics/") {
		return name
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ""
	}
	return "projects/" + projectID + "/topics/" + name
}
