package graph

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ClearDatabase drops all constraints, all non-lookup indexes, and deletes
// every node and relationship in batches.
func ClearDatabase(ctx context.Context, db Driver) error {
	logrus.Info("Clearing database...")

	// Constraints first, so re-loads never collide with stale uniqueness rules.
	res, err := db.ExecuteQuery(ctx, ShowConstraintsQuery, nil)
	if err != nil {
		return fmt.Errorf("failed to list constraints: %w", err)
	}
	for _, rec := range res.Records {
		name, _ := rec.Get("name")
		query := fmt.Sprintf("DROP CONSTRAINT %s IF EXISTS", name)
		if _, err := db.ExecuteQuery(ctx, query, nil); err != nil {
			return fmt.Errorf("failed to drop constraint %v: %w", name, err)
		}
	}
	if len(res.Records) > 0 {
		logrus.Infof("Dropped %d constraints", len(res.Records))
	}

	res, err = db.ExecuteQuery(ctx, ShowIndexesQuery, nil)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	for _, rec := range res.Records {
		name, _ := rec.Get("name")
		query := fmt.Sprintf("DROP INDEX %s IF EXISTS", name)
		if _, err := db.ExecuteQuery(ctx, query, nil); err != nil {
			return fmt.Errorf("failed to drop index %v: %w", name, err)
		}
	}
	if len(res.Records) > 0 {
		logrus.Infof("Dropped %d indexes", len(res.Records))
	}

	deleted := 0
	for {
		res, err = db.ExecuteQuery(ctx, DeleteBatchQuery, nil)
		if err != nil {
			return fmt.Errorf("failed to delete nodes: %w", err)
		}
		if len(res.Records) == 0 {
			break
		}
		count, _ := res.Records[0].Get("deleted")
		n, _ := count.(int64)
		deleted += int(n)
		if n == 0 {
			break
		}
	}
	logrus.Infof("Database cleared (%d nodes deleted)", deleted)
	return nil
}
