// Package mongostore is the MongoDB backend of the durable store. Facility
// records live in the "mensas" collection and days in "meals".
package mongostore

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/Keksclan/goMensaSquirrel/meal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.trai.ch/zerr"
)

const (
	FacilityCollection = "mensas"
	DayCollection      = "meals"
)

type facilityDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Facility string             `bson:"mensa_id"`
	Lang     string             `bson:"lang"`
	Name     string             `bson:"name"`
}

type dayDoc struct {
	RecordID primitive.ObjectID `bson:"mensa_record_id"`
	Date     string             `bson:"date"`
	Meal     meal.Day           `bson:"meal"`
}

// Store implements durable.Store on a MongoDB database.
type Store struct {
	client     *mongo.Client
	facilities *mongo.Collection
	days       *mongo.Collection
}

// Open connects to uri, verifies the connection and ensures the indexes of
// the given database.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, zerr.Wrap(err, "mongo connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, zerr.Wrap(err, "mongo ping")
	}
	s := New(client.Database(database))
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return s, nil
}

// New uses an existing database handle. Close does not disconnect a client
// it did not create.
func New(db *mongo.Database) *Store {
	return &Store{
		facilities: db.Collection(FacilityCollection),
		days:       db.Collection(DayCollection),
	}
}

// EnsureIndexes creates the unique keys the upserts rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.facilities.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "mensa_id", Value: 1}, {Key: "lang", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "mongo create index"), "collection", FacilityCollection)
	}
	_, err = s.days.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "mensa_record_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "mongo create index"), "collection", DayCollection)
	}
	return nil
}

func facilityFilter(facility, lang string) bson.D {
	return bson.D{{Key: "mensa_id", Value: facility}, {Key: "lang", Value: lang}}
}

func (s *Store) UpsertFacility(ctx context.Context, facility, lang, name string) (string, error) {
	opts := options.FindOneAndReplace().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc facilityDoc
	err := s.facilities.FindOneAndReplace(ctx, facilityFilter(facility, lang),
		facilityDoc{Facility: facility, Lang: lang, Name: name}, opts).Decode(&doc)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "mongo upsert facility"), "facility", facility)
	}
	return doc.ID.Hex(), nil
}

func (s *Store) UpsertDay(ctx context.Context, recordID string, day meal.Day) error {
	oid, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "mongo record id"), "record_id", recordID)
	}
	date := day.Date.String()
	_, err = s.days.ReplaceOne(ctx,
		bson.D{{Key: "mensa_record_id", Value: oid}, {Key: "date", Value: date}},
		dayDoc{RecordID: oid, Date: date, Meal: day},
		options.Replace().SetUpsert(true))
	if err != nil {
		return zerr.With(zerr.Wrap(err, "mongo upsert day"), "date", date)
	}
	return nil
}

func (s *Store) FindFacility(ctx context.Context, facility, lang string) (string, bool, error) {
	var doc facilityDoc
	err := s.facilities.FindOne(ctx, facilityFilter(facility, lang)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, zerr.With(zerr.Wrap(err, "mongo find facility"), "facility", facility)
	}
	return doc.ID.Hex(), true, nil
}

func (s *Store) FindDay(ctx context.Context, recordID string, date civil.Date) (meal.Day, bool, error) {
	oid, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		return meal.Day{}, false, zerr.With(zerr.Wrap(err, "mongo record id"), "record_id", recordID)
	}
	var doc dayDoc
	err = s.days.FindOne(ctx,
		bson.D{{Key: "mensa_record_id", Value: oid}, {Key: "date", Value: date.String()}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return meal.Day{}, false, nil
	}
	if err != nil {
		return meal.Day{}, false, zerr.With(zerr.Wrap(err, "mongo find day"), "date", date.String())
	}
	return doc.Meal, true, nil
}

// Close disconnects the client created by Open.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
