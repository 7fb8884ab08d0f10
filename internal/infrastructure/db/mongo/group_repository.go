package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

const groupsCollection = "groups"

type GroupRepository struct {
	coll *mongo.Collection
}

func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{coll: db.Collection(groupsCollection)}
}

type groupDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Name                string             `bson:"name"`
	Type                string             `bson:"type"`
	Description         string             `bson:"description,omitempty"`
	Members             []string           `bson:"members,omitempty"`
	CreatedBy           string             `bson:"created_by"`
	VisibleUnitManagers []string           `bson:"visible_unit_managers,omitempty"`
	VisibleUsers        []string           `bson:"visible_users,omitempty"`
	IsActive            bool               `bson:"is_active"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

func (d *groupDoc) toDomain() *domain.Group {
	return &domain.Group{
		ID:                  d.ID.Hex(),
		Name:                d.Name,
		Type:                domain.GroupType(d.Type),
		Description:         d.Description,
		Members:             d.Members,
		CreatedBy:           d.CreatedBy,
		VisibleUnitManagers: d.VisibleUnitManagers,
		VisibleUsers:        d.VisibleUsers,
		IsActive:            d.IsActive,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

func toGroupDoc(g *domain.Group) (*groupDoc, error) {
	doc := &groupDoc{
		Name:                g.Name,
		Type:                string(g.Type),
		Description:         g.Description,
		Members:             g.Members,
		CreatedBy:           g.CreatedBy,
		VisibleUnitManagers: g.VisibleUnitManagers,
		VisibleUsers:        g.VisibleUsers,
		IsActive:            g.IsActive,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
	}
	if g.ID != "" {
		oid, err := primitive.ObjectIDFromHex(g.ID)
		if err != nil {
			return nil, &domain.NotFoundError{Resource: "group", ID: g.ID}
		}
		doc.ID = oid
	}
	return doc, nil
}

func (r *GroupRepository) FindByID(ctx context.Context, id string) (*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &domain.NotFoundError{Resource: "group", ID: id}
	}

	var doc groupDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid, "is_active": true}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.NotFoundError{Resource: "group", ID: id}
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *GroupRepository) FindByMember(ctx context.Context, userID string) ([]*domain.Group, error) {
	return r.find(ctx, bson.M{"members": userID, "is_active": true})
}

func (r *GroupRepository) ListByType(ctx context.Context, t domain.GroupType) ([]*domain.Group, error) {
	return r.find(ctx, bson.M{"type": string(t), "is_active": true})
}

func (r *GroupRepository) find(ctx context.Context, filter bson.M) ([]*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Group
	for cur.Next(ctx) {
		var doc groupDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *GroupRepository) Insert(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toGroupDoc(group)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	group.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return group, nil
}

func (r *GroupRepository) Update(ctx context.Context, group *domain.Group) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toGroupDoc(group)
	if err != nil {
		return err
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "group", ID: group.ID}
	}
	return nil
}

func (r *GroupRepository) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &domain.NotFoundError{Resource: "group", ID: id}
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "group", ID: id}
	}
	return nil
}

// EnsureIndexes creates the membership lookup indexes.
func (r *GroupRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "members", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "is_active", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
