package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkpost/blog-api/internal/core/domain"
)

const collectionPosts = "posts"

// PostRepository implements ports.PostRepository on the posts collection.
// Reads join the author's name from the users collection.
type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(collectionPosts)}
}

type mongoPost struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Author    primitive.ObjectID `bson:"author"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type mongoAuthor struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
}

// postView is the shape produced by populatePipeline.
type postView struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Author    primitive.ObjectID `bson:"author"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
	AuthorDoc *mongoAuthor       `bson:"author_doc,omitempty"`
}

func (v *postView) toDomain() domain.Post {
	p := domain.Post{
		ID:        v.ID.Hex(),
		Title:     v.Title,
		Content:   v.Content,
		Author:    domain.Author{ID: v.Author.Hex()},
		CreatedAt: v.CreatedAt.UTC(),
		UpdatedAt: v.UpdatedAt.UTC(),
	}
	if v.AuthorDoc != nil {
		p.Author.Name = v.AuthorDoc.Name
	}
	return p
}

// populatePipeline matches posts, sorts newest first and attaches {_id, name}
// of the author. Posts whose author no longer exists keep an empty name.
func populatePipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author_doc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author_doc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "content", Value: 1},
			{Key: "author", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "updated_at", Value: 1},
			{Key: "author_doc._id", Value: 1},
			{Key: "author_doc.name", Value: 1},
		}}},
	}
}

func (r *PostRepository) find(ctx context.Context, match bson.M) ([]domain.Post, error) {
	cur, err := r.col.Aggregate(ctx, populatePipeline(match))
	if err != nil {
		return nil, domain.StorageError("aggregate posts", err)
	}
	defer cur.Close(ctx)

	var views []postView
	if err := cur.All(ctx, &views); err != nil {
		return nil, domain.StorageError("decode posts", err)
	}

	posts := make([]domain.Post, len(views))
	for i := range views {
		posts[i] = views[i].toDomain()
	}
	return posts, nil
}

// List returns every post, newest first.
func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, bson.M{})
}

// FindByID returns domain.ErrPostNotFound for unknown and malformed ids alike.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPostNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	posts, err := r.find(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, domain.ErrPostNotFound
	}
	return &posts[0], nil
}

// Create inserts the post and returns it with the author populated.
func (r *PostRepository) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	authorID, err := primitive.ObjectIDFromHex(p.Author.ID)
	if err != nil {
		return nil, domain.NewValidationError("invalid author id")
	}

	doc := mongoPost{
		ID:        primitive.NewObjectID(),
		Title:     p.Title,
		Content:   p.Content,
		Author:    authorID,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}

	insertCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(insertCtx, doc); err != nil {
		return nil, domain.StorageError("insert post", err)
	}
	return r.FindByID(ctx, doc.ID.Hex())
}

// Update replaces title and content and bumps updated_at.
func (r *PostRepository) Update(ctx context.Context, id, title, content string) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPostNotFound
	}

	updateCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(updateCtx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"title":      title,
			"content":    content,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return nil, domain.StorageError("update post", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrPostNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPostNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.StorageError("delete post", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes backing the newest-first feed.
func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return domain.StorageError("create post indexes", err)
	}
	return nil
}
