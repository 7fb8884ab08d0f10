package mongo

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

const usersCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	Name         string             `bson:"name"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedBy    string             `bson:"created_by,omitempty"`
	Groups       []string           `bson:"groups,omitempty"`
	Timezone     string             `bson:"timezone"`
	IsActive     bool               `bson:"is_active"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Name:         d.Name,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		CreatedBy:    d.CreatedBy,
		Groups:       d.Groups,
		Timezone:     d.Timezone,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toUserDoc(u *domain.User) (*userDoc, error) {
	doc := &userDoc{
		UserID:       u.UserID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedBy:    u.CreatedBy,
		Groups:       u.Groups,
		Timezone:     u.Timezone,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, &domain.NotFoundError{Resource: "user", ID: u.ID}
		}
		doc.ID = oid
	}
	return doc, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &domain.NotFoundError{Resource: "user", ID: id}
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *UserRepository) FindByUserID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"user_id": userID}, userID)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)}, email)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, username)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, ref string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter["is_active"] = true
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.NotFoundError{Resource: "user", ID: ref}
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue // unresolvable ids are simply absent from the result
		}
		oids = append(oids, oid)
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toUserDoc(user)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateKeyConflict(err, user)
		}
		return nil, err
	}

	user.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toUserDoc(user)
	if err != nil {
		return err
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKeyConflict(err, user)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "user", ID: user.UserID}
	}
	return nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &domain.NotFoundError{Resource: "user", ID: id}
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "user", ID: id}
	}
	return nil
}

// List translates a visibility scope to a query. A non-positive limit means
// no pagination.
func (r *UserRepository) List(ctx context.Context, scope ports.UserScope, page, limit int64) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := scopeFilter(scope)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetSkip((page - 1) * limit).SetLimit(limit)
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*domain.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toDomain())
	}
	return out, total, cur.Err()
}

func scopeFilter(scope ports.UserScope) bson.M {
	filter := bson.M{"is_active": true}
	if scope.All {
		return filter
	}
	if scope.SelfID != "" {
		if oid, err := primitive.ObjectIDFromHex(scope.SelfID); err == nil {
			filter["_id"] = oid
		} else {
			filter["_id"] = scope.SelfID // unresolvable: matches nothing
		}
		return filter
	}
	if len(scope.Roles) > 0 {
		roles := make([]string, len(scope.Roles))
		for i, r := range scope.Roles {
			roles[i] = string(r)
		}
		filter["role"] = bson.M{"$in": roles}
	}
	if len(scope.GroupIDs) > 0 {
		filter["groups"] = bson.M{"$in": scope.GroupIDs}
	}
	if len(scope.CreatedByIn) > 0 {
		filter["created_by"] = bson.M{"$in": scope.CreatedByIn}
	}
	return filter
}

// MaxIDSuffix scans the external ids with the given prefix and returns the
// highest numeric suffix. Suffixes cannot be compared lexically (U9 > U10),
// so the ids are parsed client-side; this only runs to seed the allocator.
func (r *UserRepository) MaxIDSuffix(ctx context.Context, prefix string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": primitive.Regex{Pattern: "^" + prefix + "[0-9]+$"}}
	opts := options.Find().SetProjection(bson.M{"user_id": 1})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var max int64
	for cur.Next(ctx) {
		var doc struct {
			UserID string `bson:"user_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(strings.TrimPrefix(doc.UserID, prefix), 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, cur.Err()
}

func (r *UserRepository) AddGroup(ctx context.Context, userID, groupID string) error {
	return r.updateGroups(ctx, userID, bson.M{"$addToSet": bson.M{"groups": groupID}})
}

func (r *UserRepository) RemoveGroup(ctx context.Context, userID, groupID string) error {
	return r.updateGroups(ctx, userID, bson.M{"$pull": bson.M{"groups": groupID}})
}

func (r *UserRepository) updateGroups(ctx context.Context, userID string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return &domain.NotFoundError{Resource: "user", ID: userID}
	}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "user", ID: userID}
	}
	return nil
}

// EnsureIndexes creates the unique indexes that arbitrate external-id, email,
// and username collisions. Uniqueness applies to active records only, so a
// soft-deleted account releases its email and username.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	activeOnly := bson.M{"is_active": true}
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
		{Keys: bson.D{{Key: "groups", Value: 1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// duplicateKeyConflict maps a Mongo duplicate-key error to the typed conflict,
// identifying the offending field from the violated index name.
func duplicateKeyConflict(err error, user *domain.User) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "user_id"):
		return &domain.ConflictError{Field: "user_id", Value: user.UserID}
	case strings.Contains(msg, "username"):
		return &domain.ConflictError{Field: "username", Value: user.Username}
	default:
		return &domain.ConflictError{Field: "email", Value: user.Email}
	}
}
