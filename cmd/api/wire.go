package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/geocoder89/careercounsel/internal/config"
	"github.com/geocoder89/careercounsel/internal/db"
	"github.com/geocoder89/careercounsel/internal/notifications"
	"github.com/geocoder89/careercounsel/internal/redisclient"
	"github.com/geocoder89/careercounsel/internal/repo/dynamo"
	"github.com/geocoder89/careercounsel/internal/repo/memory"
	"github.com/geocoder89/careercounsel/internal/repo/postgres"
	"github.com/geocoder89/careercounsel/internal/repo/redisrepo"
	"github.com/geocoder89/careercounsel/internal/store"
	"github.com/streadway/amqp"
)

// awsLoader resolves the shared AWS config once. DynamoDB, Bedrock and SNS
// all draw from it.
type awsLoader struct {
	cfg config.Config

	once sync.Once
	v    aws.Config
	err  error
}

func (l *awsLoader) Load(ctx context.Context) (aws.Config, error) {
	l.once.Do(func() {
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(l.cfg.AWSRegion),
		}
		if l.cfg.AWSAccessKeyID != "" && l.cfg.AWSSecretAccessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(l.cfg.AWSAccessKeyID, l.cfg.AWSSecretAccessKey, ""),
			))
		}
		l.v, l.err = awsconfig.LoadDefaultConfig(ctx, opts...)
	})
	return l.v, l.err
}

// backends holds the shared clients so the store, the limiter and the
// notification publisher reuse one connection each.
type backends struct {
	cfg config.Config
	log *slog.Logger
	aws *awsLoader

	redis *redisclient.Client
}

func (b *backends) redisClient(ctx context.Context) (*redisclient.Client, error) {
	if b.redis != nil {
		return b.redis, nil
	}

	c := redisclient.New(redisclient.Config{
		Addr:     b.cfg.RedisAddr,
		Password: b.cfg.RedisPassword,
		DB:       b.cfg.RedisDB,
	})
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	b.redis = c
	return c, nil
}

func (b *backends) openStore(ctx context.Context) (store.Store, error) {
	switch b.cfg.StoreBackend {
	case "memory", "":
		return memory.NewStore(), nil

	case "redis":
		c, err := b.redisClient(ctx)
		if err != nil {
			return store.Store{}, err
		}
		return redisrepo.NewStore(c), nil

	case "postgres":
		pool, err := db.NewPool(ctx, b.cfg.DBURL)
		if err != nil {
			return store.Store{}, fmt.Errorf("db connect: %w", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return store.Store{}, err
		}
		return postgres.NewStore(pool), nil

	case "dynamodb":
		awsCfg, err := b.aws.Load(ctx)
		if err != nil {
			return store.Store{}, fmt.Errorf("load aws config: %w", err)
		}
		return dynamo.NewStore(dynamodb.NewFromConfig(awsCfg), b.cfg.DynamoUsersTable), nil

	default:
		return store.Store{}, fmt.Errorf("unknown store backend %q", b.cfg.StoreBackend)
	}
}

// openPublisher returns the notification sink and a close func for any
// connection it opened.
func (b *backends) openPublisher(ctx context.Context) (notifications.Publisher, func() error, error) {
	noop := func() error { return nil }

	switch b.cfg.NotifyBackend {
	case "log", "":
		return notifications.NewLogPublisher(b.log), noop, nil

	case "redis":
		c, err := b.redisClient(ctx)
		if err != nil {
			return nil, noop, err
		}
		return notifications.NewRedisPublisher(c.Raw(), b.cfg.NotifyRedisChannel), noop, nil

	case "amqp":
		conn, err := amqp.Dial(b.cfg.AMQPURL)
		if err != nil {
			return nil, noop, fmt.Errorf("amqp dial: %w", err)
		}
		pub, err := notifications.NewAMQPPublisher(conn, b.cfg.AMQPExchange)
		if err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		return pub, conn.Close, nil

	case "sns":
		if b.cfg.SNSTopicARN == "" {
			return nil, noop, errors.New("NOTIFY_BACKEND=sns needs SNS_TOPIC_ARN")
		}
		awsCfg, err := b.aws.Load(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("load aws config: %w", err)
		}
		return notifications.NewSNSPublisher(sns.NewFromConfig(awsCfg), b.cfg.SNSTopicARN), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown notify backend %q", b.cfg.NotifyBackend)
	}
}
