package config

import (
	"context"
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Bootstrap struct {
	Router         *chi.Mux
	MongoClient    *mongo.Client
	MongoDB        *mongo.Database
	Redis          *redis.Client
	Minio          *minio.Client
	Logger         *zap.Logger
	RabbitMQ       *amqp091.Connection
	InternalConfig *InternalConfig
	DriverConfig   *DriverConfig
	// WorkerStop if set will be called during Shutdown to gracefully stop background workers
	WorkerStop     func()
	ReconcilerStop func()
	// DrainSync if set blocks until in-flight remote confirmations resolve
	DrainSync func()
}

func (b *Bootstrap) Shutdown(ctx context.Context) error {
	if b.ReconcilerStop != nil {
		b.ReconcilerStop()
		log.Println("Successfully stopped reconciler")
	}

	if b.WorkerStop != nil {
		b.WorkerStop()
		log.Println("Successfully stopped invoice worker")
	}

	if b.DrainSync != nil {
		b.DrainSync()
		log.Println("Successfully drained in-flight sync confirmations")
	}

	if err := b.MongoClient.Disconnect(ctx); err != nil {
		return err
	}
	log.Println("Successfully closing MongoDB")

	if err := b.Redis.Close(); err != nil {
		return err
	}
	log.Println("Successfully closing Redis")

	if err := b.RabbitMQ.Close(); err != nil {
		return err
	}
	log.Println("Successfully closing RabbitMQ")

	if err := b.Logger.Sync(); err != nil {
		return err
	}
	log.Println("Successfully closing Logger")

	return nil
}
