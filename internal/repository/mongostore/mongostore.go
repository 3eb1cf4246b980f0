// Package mongostore implements the document store client on MongoDB.
package mongostore

import (
	"context"
	"errors"

	"quilog/internal/database"
	"quilog/internal/models"
	"quilog/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const system = "mongodb"

// Options configures the Mongo store.
type Options struct {
	// Transactions links comments inside a multi-document transaction.
	// Requires a replica set or sharded cluster.
	Transactions bool
}

// New returns a Store over db. Closing the store disconnects client.
func New(client *mongo.Client, db *mongo.Database, opts Options) *repository.Store {
	comments := &commentRepository{
		col:  db.Collection(database.CollectionComments),
		inst: repository.NewInstrument(system, database.CollectionComments),
	}

	var commentRepo repository.CommentRepository = comments
	if opts.Transactions {
		commentRepo = &linkingCommentRepository{
			commentRepository: comments,
			client:            client,
			posts:             db.Collection(database.CollectionBlogs),
		}
	}

	return &repository.Store{
		Backend: "mongo",
		Posts: &postRepository{
			col:  db.Collection(database.CollectionBlogs),
			inst: repository.NewInstrument(system, database.CollectionBlogs),
		},
		Comments: commentRepo,
		Users: &userRepository{
			col:  db.Collection(database.CollectionUsers),
			inst: repository.NewInstrument(system, database.CollectionUsers),
		},
		PingFunc: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		CloseFunc: func() error {
			return database.DisconnectMongo(client)
		},
	}
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}

func notFound(err error, resource, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

type postRepository struct {
	col  *mongo.Collection
	inst *repository.Instrument
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, end := r.inst.Start(ctx, "create")
	defer func() { end(err) }()

	// $addToSet and $pull fail on null fields.
	post.Normalize()
	_, err = r.col.InsertOne(ctx, post)
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id string) (post *models.Post, err error) {
	ctx, end := r.inst.Start(ctx, "get")
	defer func() { end(err) }()

	var p models.Post
	if err = r.col.FindOne(ctx, byID(id)).Decode(&p); err != nil {
		return nil, notFound(err, "Post", id)
	}
	return &p, nil
}

func (r *postRepository) List(ctx context.Context) (posts []*models.Post, err error) {
	ctx, end := r.inst.Start(ctx, "list")
	defer func() { end(err) }()

	return r.find(ctx, bson.M{})
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) (posts []*models.Post, err error) {
	ctx, end := r.inst.Start(ctx, "list_by_user")
	defer func() { end(err) }()

	return r.find(ctx, bson.M{"userId": userID})
}

func (r *postRepository) find(ctx context.Context, filter bson.M) ([]*models.Post, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) (err error) {
	ctx, end := r.inst.Start(ctx, "update")
	defer func() { end(err) }()

	res, err := r.col.UpdateOne(ctx, byID(post.ID), bson.M{"$set": bson.M{
		"title":       post.Title,
		"content":     post.Content,
		"author":      post.Author,
		"tags":        post.Tags,
		"category":    post.Category,
		"publishDate": post.PublishDate,
		"coverImage":  post.CoverImage,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID string) (err error) {
	ctx, end := r.inst.Start(ctx, "add_like")
	defer func() { end(err) }()

	return r.setOp(ctx, postID, "$addToSet", "likes", userID)
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID string) (err error) {
	ctx, end := r.inst.Start(ctx, "remove_like")
	defer func() { end(err) }()

	return r.setOp(ctx, postID, "$pull", "likes", userID)
}

func (r *postRepository) AppendComment(ctx context.Context, postID, commentID string) (err error) {
	ctx, end := r.inst.Start(ctx, "append_comment")
	defer func() { end(err) }()

	return r.setOp(ctx, postID, "$addToSet", "comments", commentID)
}

func (r *postRepository) setOp(ctx context.Context, postID, op, field, value string) error {
	res, err := r.col.UpdateOne(ctx, byID(postID), bson.M{op: bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

type commentRepository struct {
	col  *mongo.Collection
	inst *repository.Instrument
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	ctx, end := r.inst.Start(ctx, "create")
	defer func() { end(err) }()

	_, err = r.col.InsertOne(ctx, comment)
	return err
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (comment *models.Comment, err error) {
	ctx, end := r.inst.Start(ctx, "get")
	defer func() { end(err) }()

	var c models.Comment
	if err = r.col.FindOne(ctx, byID(id)).Decode(&c); err != nil {
		return nil, notFound(err, "Comment", id)
	}
	return &c, nil
}

func (r *commentRepository) List(ctx context.Context) (comments []*models.Comment, err error) {
	ctx, end := r.inst.Start(ctx, "list")
	defer func() { end(err) }()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	comments = []*models.Comment{}
	err = cur.All(ctx, &comments)
	return comments, err
}

// linkingCommentRepository adds transactional comment linking.
type linkingCommentRepository struct {
	*commentRepository
	client *mongo.Client
	posts  *mongo.Collection
}

func (r *linkingCommentRepository) CreateAndLink(ctx context.Context, postID string, comment *models.Comment) (err error) {
	ctx, end := r.inst.Start(ctx, "create_and_link")
	defer func() { end(err) }()

	sess, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc context.Context) (interface{}, error) {
		if _, err := r.col.InsertOne(sc, comment); err != nil {
			return nil, err
		}
		res, err := r.posts.UpdateOne(sc, byID(postID), bson.M{"$addToSet": bson.M{"comments": comment.ID}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, nil
	})
	return err
}

type userRepository struct {
	col  *mongo.Collection
	inst *repository.Instrument
}

func (r *userRepository) GetByID(ctx context.Context, id string) (profile *models.Profile, err error) {
	ctx, end := r.inst.Start(ctx, "get")
	defer func() { end(err) }()

	var p models.Profile
	if err = r.col.FindOne(ctx, byID(id)).Decode(&p); err != nil {
		return nil, notFound(err, "User", id)
	}
	return &p, nil
}

func (r *userRepository) Upsert(ctx context.Context, profile *models.Profile) (err error) {
	ctx, end := r.inst.Start(ctx, "upsert")
	defer func() { end(err) }()

	_, err = r.col.ReplaceOne(ctx, byID(profile.ID), profile, options.Replace().SetUpsert(true))
	return err
}

func (r *userRepository) Update(ctx context.Context, id string, patch models.Profile) (profile *models.Profile, err error) {
	ctx, end := r.inst.Start(ctx, "update")
	defer func() { end(err) }()

	set := profileSet(patch)
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	var p models.Profile
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err = r.col.FindOneAndUpdate(ctx, byID(id), bson.M{"$set": set}, opts).Decode(&p); err != nil {
		return nil, notFound(err, "User", id)
	}
	return &p, nil
}

func (r *userRepository) List(ctx context.Context) (profiles []*models.Profile, err error) {
	ctx, end := r.inst.Start(ctx, "list")
	defer func() { end(err) }()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	profiles = []*models.Profile{}
	err = cur.All(ctx, &profiles)
	return profiles, err
}

// profileSet returns the $set document for the non-empty fields of patch.
func profileSet(patch models.Profile) bson.M {
	set := bson.M{}
	add := func(key, v string) {
		if v != "" {
			set[key] = v
		}
	}
	add("name", patch.Name)
	add("email", patch.Email)
	add("profession", patch.Profession)
	add("phone", patch.Phone)
	add("photo", patch.Photo)
	add("facebook", patch.Facebook)
	add("instagram", patch.Instagram)
	add("twitter", patch.Twitter)
	add("linkedin", patch.LinkedIn)
	return set
}
