// Package sample holds a small blog model used by rowmapctl and by tests
// that need a realistic registry.
package sample

import (
	"context"
	"fmt"
	"time"

	"github.com/syssam/rowmap/contrib/mixin"
	"github.com/syssam/rowmap/query"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
	"github.com/syssam/rowmap/session"
)

// Roles of a user.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Address is embedded in User and stored in address_* columns.
type Address struct {
	Street  string
	City    string
	ZipCode string
}

// User writes posts.
type User struct {
	mixin.AutoID
	mixin.Time
	Name    string
	Email   string
	Role    string
	Address Address
	// Posts is filled by AuthorsByPosts. It has no column.
	Posts int
}

// Post belongs to an optional author.
type Post struct {
	ID          int64
	Title       string
	Body        string
	Author      *User
	Views       int
	Published   bool
	PublishedAt *time.Time
	Tags        []string
	CreatedAt   time.Time
}

// Registry returns the descriptors of the model.
func Registry() *schema.Registry {
	return schema.NewRegistry().MustRegister(
		schema.New[User]("").
			Mixin(mixin.AutoID{}, mixin.Time{}).
			Field("Name", field.StringSize(100)).
			Field("Email", field.StringSize(200)).
			Field("Role", field.Enum(RoleAdmin, RoleMember)).
			Field("Address.Street", field.String()).
			Field("Address.City", field.StringSize(80)).
			Field("Address.ZipCode", field.StringSize(16)).
			MustBuild(),
		schema.New[Post]("").
			PK("ID", field.Int64(), schema.AutoIncrement()).
			Field("Title", field.StringSize(200)).
			Field("Body", field.String()).
			Field("Author.ID", field.Int64()).
			Field("Views", field.Int()).
			Field("Published", field.BoolInt()).
			Field("PublishedAt", field.Timestamp()).
			Field("Tags", field.Msgpack[[]string]()).
			Field("CreatedAt", field.Timestamp(), schema.NowOnInsert()).
			MustBuild(),
	)
}

// Seed inserts two users and their posts, plus one post without author.
func Seed(ctx context.Context, s *session.Session) ([]*User, error) {
	users := []*User{
		{Name: "Ada", Email: "ada@example.com", Role: RoleAdmin, Address: Address{Street: "1 Loop St", City: "London", ZipCode: "N1"}},
		{Name: "Linus", Email: "linus@example.com", Role: RoleMember, Address: Address{City: "Helsinki"}},
	}
	for _, u := range users {
		if err := s.Insert(ctx, u); err != nil {
			return nil, fmt.Errorf("sample: seed user %s: %w", u.Name, err)
		}
	}
	author := func(u *User) *User {
		a := &User{}
		a.ID = u.ID
		return a
	}
	posts := []*Post{
		{Title: "Engines", Author: author(users[0]), Views: 420, Tags: []string{"history"}},
		{Title: "Notes", Author: author(users[0]), Views: 75},
		{Title: "Kernels", Author: author(users[1]), Views: 1300, Tags: []string{"os", "c"}},
		{Title: "Untitled", Views: 3},
	}
	for _, p := range posts {
		if err := s.Insert(ctx, p); err != nil {
			return nil, fmt.Errorf("sample: seed post %s: %w", p.Title, err)
		}
	}
	return users, nil
}

// Publish marks p published at now and writes the change.
func Publish(ctx context.Context, s *session.Session, p *Post, now time.Time) error {
	p.Published = true
	p.PublishedAt = &now
	n, err := s.Update(ctx, p)
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("sample: publish %d: %d rows updated", p.ID, n)
	}
	return nil
}

// PopularPosts lists the posts with at least minViews views, most viewed
// first, with their author populated.
func PopularPosts(ctx context.Context, qb *query.Builder, minViews int) ([]*Post, error) {
	p := qb.Alias(&Post{}, "p").Exclude("Body")
	u := qb.Alias(&User{}, "u").Include("Name", "Email")
	return query.Execute[Post](ctx, qb.Select(p, u).From(p).
		LeftJoin(u).On(u, "ID").Eq(p, "Author.ID").InProperty("Author").
		Where().ClauseIf(minViews > 0, p.Field("Views"), query.Ge(minViews)).
		OrderBy().Desc(p.Field("Views")))
}

// AuthorsByPosts lists the users with their number of posts in Posts,
// the most prolific first.
func AuthorsByPosts(ctx context.Context, qb *query.Builder) ([]*User, error) {
	u := qb.Alias(&User{}, "u").Include("Name")
	p := qb.Alias(&Post{}, "p")
	n := query.Count(p.Field("ID"))
	return query.Execute[User](ctx, qb.Select(u, query.Sentence(n).Into("Posts")).From(u).
		LeftJoin(p).On(u, "ID").Eq(p, "Author.ID").
		GroupBy(u.Columns()).
		OrderBy().Desc(n).Asc(u.Field("Name")))
}

// TotalViews sums the views of every post.
func TotalViews(ctx context.Context, qb *query.Builder) (int64, error) {
	p := qb.Alias(&Post{}, "p")
	v, err := qb.Select(query.Sentence(query.Coalesce(query.Sum(p.Field("Views")), 0)).As("views").Returns(field.Int64())).
		From(p).
		ExecuteSentence(ctx)
	if err != nil || v == nil {
		return 0, err
	}
	return v.(int64), nil
}
