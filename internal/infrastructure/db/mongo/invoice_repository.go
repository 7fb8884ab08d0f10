package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

const invoicesCollection = "invoices"

type InvoiceRepository struct {
	coll *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{coll: db.Collection(invoicesCollection)}
}

type invoiceDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	InvoiceNumber int                `bson:"invoice_number"`
	InvoiceDate   time.Time          `bson:"invoice_date"`
	InvoiceAmount float64            `bson:"invoice_amount"`
	FinancialYear string             `bson:"financial_year"`
	CreatedBy     string             `bson:"created_by"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d *invoiceDoc) toDomain() *domain.Invoice {
	return &domain.Invoice{
		ID:            d.ID.Hex(),
		InvoiceNumber: d.InvoiceNumber,
		InvoiceDate:   d.InvoiceDate,
		InvoiceAmount: d.InvoiceAmount,
		FinancialYear: d.FinancialYear,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &domain.NotFoundError{Resource: "invoice", ID: id}
	}

	var doc invoiceDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.NotFoundError{Resource: "invoice", ID: id}
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *InvoiceRepository) Find(ctx context.Context, filter ports.InvoiceFilter) ([]*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"financial_year": filter.FinancialYear}
	dateRange := bson.M{}
	if !filter.StartDate.IsZero() {
		dateRange["$gte"] = filter.StartDate
	}
	if !filter.EndDate.IsZero() {
		dateRange["$lte"] = filter.EndDate
	}
	if len(dateRange) > 0 {
		query["invoice_date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "invoice_date", Value: -1}})
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Invoice
	for cur.Next(ctx) {
		var doc invoiceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *InvoiceRepository) Insert(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := invoiceDoc{
		InvoiceNumber: invoice.InvoiceNumber,
		InvoiceDate:   invoice.InvoiceDate,
		InvoiceAmount: invoice.InvoiceAmount,
		FinancialYear: invoice.FinancialYear,
		CreatedBy:     invoice.CreatedBy,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	invoice.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return invoice, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(invoice.ID)
	if err != nil {
		return &domain.NotFoundError{Resource: "invoice", ID: invoice.ID}
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"invoice_amount": invoice.InvoiceAmount,
		"invoice_date":   invoice.InvoiceDate,
		"updated_at":     invoice.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "invoice", ID: invoice.ID}
	}
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &domain.NotFoundError{Resource: "invoice", ID: id}
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return &domain.NotFoundError{Resource: "invoice", ID: id}
	}
	return nil
}

// EnsureIndexes creates the listing index on financial year + date.
func (r *InvoiceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "financial_year", Value: 1}, {Key: "invoice_date", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
