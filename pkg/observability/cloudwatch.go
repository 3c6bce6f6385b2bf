package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// maxDatums is the PutMetricData limit per call
const maxDatums = 1000

// CloudWatchClient is the part of the CloudWatch API the sink uses
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics buffers measurements and sends them to CloudWatch on
// Flush. It is used on Lambda, where nothing scrapes /metrics.
type CloudWatchMetrics struct {
	namespace string
	client    CloudWatchClient
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	buffer []types.MetricDatum
}

// NewCloudWatchMetrics creates a sink writing to namespace
func NewCloudWatchMetrics(namespace string, client CloudWatchClient, logger *zap.Logger) *CloudWatchMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudWatchMetrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

func dimension(name, value string) types.Dimension {
	return types.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

func (m *CloudWatchMetrics) add(datums ...types.MetricDatum) {
	if m.client == nil {
		return
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range datums {
		datums[i].Timestamp = aws.Time(now)
		m.buffer = append(m.buffer, datums[i])
	}
}

// SessionOperation counts an editing operation
func (m *CloudWatchMetrics) SessionOperation(operation string, changed bool) {
	m.add(types.MetricDatum{
		MetricName: aws.String("SessionOperation"),
		Dimensions: []types.Dimension{
			dimension("Operation", operation),
			dimension("Changed", strconv.FormatBool(changed)),
		},
		Value: aws.Float64(1),
		Unit:  types.StandardUnitCount,
	})
}

// SuggestionRequest records one similarity service call
func (m *CloudWatchMetrics) SuggestionRequest(outcome string, results int, duration time.Duration) {
	m.add(
		types.MetricDatum{
			MetricName: aws.String("SuggestionRequest"),
			Dimensions: []types.Dimension{dimension("Outcome", outcome)},
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
		},
		types.MetricDatum{
			MetricName: aws.String("SuggestionLatency"),
			Dimensions: []types.Dimension{dimension("Outcome", outcome)},
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
		},
		types.MetricDatum{
			MetricName: aws.String("SuggestionResults"),
			Value:      aws.Float64(float64(results)),
			Unit:       types.StandardUnitCount,
		},
	)
}

// ActiveSessions records the number of open sessions
func (m *CloudWatchMetrics) ActiveSessions(count int) {
	m.add(types.MetricDatum{
		MetricName: aws.String("ActiveSessions"),
		Value:      aws.Float64(float64(count)),
		Unit:       types.StandardUnitCount,
	})
}

// StoreOperation records one snapshot store call
func (m *CloudWatchMetrics) StoreOperation(operation string, err error, duration time.Duration) {
	dims := []types.Dimension{
		dimension("Operation", operation),
		dimension("Status", status(err)),
	}
	m.add(
		types.MetricDatum{
			MetricName: aws.String("StoreOperation"),
			Dimensions: dims,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
		},
		types.MetricDatum{
			MetricName: aws.String("StoreLatency"),
			Dimensions: dims,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
		},
	)
}

// Flush sends the buffered measurements. Failed sends are logged and
// dropped; metrics never fail an operation.
func (m *CloudWatchMetrics) Flush(ctx context.Context) {
	m.mu.Lock()
	pending := m.buffer
	m.buffer = nil
	m.mu.Unlock()

	for i := 0; i < len(pending); i += maxDatums {
		end := i + maxDatums
		if end > len(pending) {
			end = len(pending)
		}
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: pending[i:end],
		})
		if err != nil {
			m.logger.Warn("Failed to send metrics",
				zap.String("namespace", m.namespace),
				zap.Int("datums", end-i),
				zap.Error(err),
			)
		}
	}
}

// Run flushes every interval until ctx is done, then flushes once more
func (m *CloudWatchMetrics) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Flush(ctx)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			m.Flush(flushCtx)
			cancel()
			return
		}
	}
}
