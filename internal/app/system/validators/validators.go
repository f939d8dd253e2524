// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach
// JSON-Schema validators. On servers without collMod/validator support
// (e.g. some DocumentDB versions), validators are logged and skipped; the
// application-level checks in the stores still hold.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("families", familiesSchema())
	ensure("family_members", membersSchema())
	ensure("branches", branchesSchema())
	ensure("family_links", linksSchema())
	ensure("creation_flows", flowsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------ */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func familiesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"creator_principal_id", "name", "creator_join_code", "creation_type"},
			"properties": bson.M{
				"creator_principal_id": bson.M{"bsonType": "objectId"},
				"name":                 bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":              bson.M{"bsonType": "string"},
				"creator_join_code":    bson.M{"bsonType": "string", "pattern": "^[A-Z0-9]{8}$"},
				"is_main_family":       bson.M{"bsonType": "bool"},
				"creation_type":        bson.M{"enum": bson.A{"own_family", "parents_family"}},
			},
		},
	}
}

func membersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"family_id", "full_name", "role", "birth_year", "join_code"},
			"properties": bson.M{
				"family_id":    bson.M{"bsonType": "objectId"},
				"full_name":    bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"role":         bson.M{"enum": bson.A{"father", "mother", "child"}},
				"spouse_order": bson.M{"bsonType": bson.A{"int", "null"}, "minimum": 1},
				"mother_id":    bson.M{"bsonType": bson.A{"objectId", "null"}},
				"branch_id":    bson.M{"bsonType": bson.A{"objectId", "null"}},
				"birth_year":   bson.M{"bsonType": "int", "minimum": 1000, "maximum": 9999},
				"death_year":   bson.M{"bsonType": bson.A{"int", "null"}, "minimum": 1000, "maximum": 9999},
				"join_code":    bson.M{"bsonType": "string", "pattern": "^[A-Z0-9]{8}$"},
			},
		},
	}
}

func branchesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"family_id", "mother_id", "branch_order", "branch_name"},
			"properties": bson.M{
				"family_id":    bson.M{"bsonType": "objectId"},
				"mother_id":    bson.M{"bsonType": "objectId"},
				"branch_order": bson.M{"bsonType": "int", "minimum": 1},
				"branch_name":  bson.M{"bsonType": "string", "minLength": 1},
			},
		},
	}
}

func linksSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"family_a", "family_b", "pair_key", "established_by_principal_id", "status"},
			"properties": bson.M{
				"family_a":                    bson.M{"bsonType": "objectId"},
				"family_b":                    bson.M{"bsonType": "objectId"},
				"pair_key":                    bson.M{"bsonType": "string", "minLength": 1},
				"established_by_principal_id": bson.M{"bsonType": "objectId"},
				"status":                      bson.M{"enum": bson.A{"active", "inactive"}},
			},
		},
	}
}

func flowsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"family_id", "principal_id"},
			"properties": bson.M{
				"family_id":        bson.M{"bsonType": "objectId"},
				"principal_id":     bson.M{"bsonType": "objectId"},
				"parents_setup":    bson.M{"bsonType": "bool"},
				"children_setup":   bson.M{"bsonType": "bool"},
				"branches_created": bson.M{"bsonType": "bool"},
			},
		},
	}
}
