// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll runs at startup. Two of these indexes carry invariants the
application depends on for correctness, not just speed:

  - family_members.join_code unique: join codes are capability tokens and
    the index is the commit-time uniqueness re-check behind the issuer.
  - branches (family_id, branch_order) unique: branch order is the
    left-to-right display order and may not repeat within a family.

Errors are aggregated so every problem is visible and startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, models []mongo.IndexModel) {
		if err := ensureIndexSet(ctx, db.Collection(coll), models); err != nil {
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("families", familyIndexes())
	ensure("family_members", memberIndexes())
	ensure("branches", branchIndexes())
	ensure("family_links", linkIndexes())
	ensure("creation_flows", flowIndexes())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func familyIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "creator_principal_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_main_family_per_creator").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_main_family": true}),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("family_name_ci"),
		},
	}
}

func memberIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "join_code", Value: 1}},
			Options: options.Index().
				SetName("uniq_join_code").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "family_id", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetName("member_family_role"),
		},
		{
			Keys: bson.D{{Key: "family_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_creator_member_per_family").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_family_creator": true}),
		},
	}
}

func branchIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "family_id", Value: 1}, {Key: "branch_order", Value: 1}},
			Options: options.Index().
				SetName("uniq_branch_order_per_family").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "mother_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_branch_per_mother").
				SetUnique(true),
		},
	}
}

func linkIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().
				SetName("uniq_active_link_per_pair").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "active"}),
		},
		{
			Keys:    bson.D{{Key: "family_a", Value: 1}},
			Options: options.Index().SetName("link_family_a"),
		},
		{
			Keys:    bson.D{{Key: "family_b", Value: 1}},
			Options: options.Index().SetName("link_family_b"),
		},
	}
}

func flowIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "family_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_flow_per_family").
				SetUnique(true),
		},
	}
}

/* -------------------------------------------------------------------------- */
/* Helpers                                                                    */
/* -------------------------------------------------------------------------- */

// ensureIndexSet creates each desired index, tolerating the cases where an
// equivalent index already exists. CreateOne is idempotent for an index
// with identical keys, name, and options; an IndexOptionsConflict means a
// same-keys index exists under another name, which we keep rather than
// churn production indexes at startup.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				continue
			}
			if IsDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index, duplicates present", name))
				continue
			}
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// IsDuplicateKeyErr is a best-effort duplicate detector that works across
// MongoDB and DocumentDB vendors.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}
