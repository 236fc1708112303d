package mongodb

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

// TxManager runs callbacks inside MongoDB multi-document transactions.
// Requires a replica set or sharded cluster.
type TxManager struct {
	client *mongo.Client
	logger *logger.Logger
}

func NewTxManager(client *mongo.Client, log *logger.Logger) *TxManager {
	return &TxManager{client: client, logger: log.Named("TxManager")}
}

// WithTransaction runs fn in a transaction. The driver retries fn on transient
// errors, so fn must be safe to run more than once.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session failed: %w", err)
	}
	defer session.EndSession(ctx)

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txOpts)
	if err != nil {
		m.logger.Warn("Transaction aborted", zap.Error(err))
		return err
	}
	return nil
}
