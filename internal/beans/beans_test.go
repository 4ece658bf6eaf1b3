package beans

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Level int8

type Address struct {
	City string
	Zip  *string
}

type Shape interface{ Area() float64 }

type Square struct{ Side float64 }

func (s *Square) Area() float64 { return s.Side * s.Side }

type Audit struct {
	CreatedAt time.Time
}

type User struct {
	Audit
	ID      int64
	Name    string
	Active  bool
	Level   Level
	Score   *int
	Tags    []string
	Home    Address
	Work    *Address
	Shape   Shape
	Payload []byte
	secret  string
}

func abstract(prefix string) (reflect.Type, bool) {
	if prefix == "Shape" {
		return reflect.TypeFor[Square](), true
	}
	return nil, false
}

func TestTypeOf(t *testing.T) {
	ut := reflect.TypeFor[User]()
	tests := []struct {
		path string
		want reflect.Type
	}{
		{"ID", reflect.TypeFor[int64]()},
		{"Score", reflect.TypeFor[*int]()},
		{"Home.City", reflect.TypeFor[string]()},
		{"Work.Zip", reflect.TypeFor[*string]()},
		{"CreatedAt", reflect.TypeFor[time.Time]()},
		{"Audit.CreatedAt", reflect.TypeFor[time.Time]()},
		{"Shape.Side", reflect.TypeFor[float64]()},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := TypeOf(ut, tt.path, abstract)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, path := range []string{"Missing", "secret", "Name.Len", "Home.Street"} {
		_, err := TypeOf(ut, path, abstract)
		assert.Error(t, err, path)
	}
	_, err := TypeOf(ut, "Shape.Side", nil)
	assert.ErrorContains(t, err, "interface without a concrete type")
}

func TestGetAndValue(t *testing.T) {
	score := 7
	u := &User{ID: 3, Name: "saoj", Score: &score, Home: Address{City: "Rio"}}

	assert.Equal(t, int64(3), Value(u, "ID"))
	assert.Equal(t, 7, Value(u, "Score"))
	assert.Equal(t, "Rio", Value(u, "Home.City"))
	assert.Nil(t, Value(u, "Work.City"))
	assert.Nil(t, Value(u, "Home.Zip"))
	assert.Nil(t, Value(u, "Tags"))
	assert.Nil(t, Value(u, "Shape.Side"))
	assert.False(t, Get(u, "Work.City").IsValid())
	assert.False(t, Get(nil, "ID").IsValid())
}

func TestIsSet(t *testing.T) {
	zero := 0
	tests := []struct {
		name string
		u    *User
		path string
		want bool
	}{
		{"false bool", &User{}, "Active", false},
		{"true bool", &User{Active: true}, "Active", true},
		{"zero int", &User{}, "ID", false},
		{"negative int", &User{ID: -1}, "ID", true},
		{"named int", &User{Level: 2}, "Level", true},
		{"empty string", &User{}, "Name", false},
		{"string", &User{Name: "x"}, "Name", true},
		{"nil pointer", &User{}, "Score", false},
		{"pointer to zero", &User{Score: &zero}, "Score", true},
		{"zero time", &User{}, "CreatedAt", false},
		{"time", &User{Audit: Audit{CreatedAt: time.Now()}}, "CreatedAt", true},
		{"empty non-nil slice", &User{Tags: []string{}}, "Tags", true},
		{"unreachable", &User{}, "Work.City", false},
		{"nested", &User{Work: &Address{City: "SP"}}, "Work.City", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSet(tt.u, tt.path))
		})
	}
}

func TestSet(t *testing.T) {
	u := &User{}
	require.NoError(t, Set(u, "ID", int64(9), nil))
	require.NoError(t, Set(u, "Level", int64(3), nil))
	require.NoError(t, Set(u, "Score", int64(4), nil))
	require.NoError(t, Set(u, "Name", "saoj", nil))
	require.NoError(t, Set(u, "Work.City", "SP", nil))
	require.NoError(t, Set(u, "Work.Zip", "01000", nil))
	require.NoError(t, Set(u, "Shape.Side", 2.0, abstract))
	require.NoError(t, Set(u, "CreatedAt", time.Unix(10, 0), nil))
	require.NoError(t, Set(u, "Payload", []byte("p"), nil))

	assert.Equal(t, int64(9), u.ID)
	assert.Equal(t, Level(3), u.Level)
	require.NotNil(t, u.Score)
	assert.Equal(t, 4, *u.Score)
	assert.Equal(t, "saoj", u.Name)
	require.NotNil(t, u.Work)
	assert.Equal(t, "SP", u.Work.City)
	assert.Equal(t, "01000", *u.Work.Zip)
	assert.Equal(t, 4.0, u.Shape.Area())
	assert.Equal(t, time.Unix(10, 0), u.CreatedAt)
	assert.Equal(t, []byte("p"), u.Payload)

	require.NoError(t, Set(u, "Score", nil, nil))
	assert.Nil(t, u.Score)
	require.NoError(t, Set(u, "Name", nil, nil))
	assert.Empty(t, u.Name)
}

func TestSetErrors(t *testing.T) {
	u := &User{}
	assert.Error(t, Set(u, "Level", int64(300), nil))
	assert.Error(t, Set(u, "ID", "nine", nil))
	assert.Error(t, Set(u, "Missing", 1, nil))
	assert.Error(t, Set(u, "secret", "x", nil))
	assert.Error(t, Set(u, "Shape.Side", 1.0, nil))
	assert.Error(t, Set(User{}, "ID", int64(1), nil))
}

func TestChild(t *testing.T) {
	u := &User{}
	c, err := Child(u, "Work", false, nil)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = Child(u, "Work", true, nil)
	require.NoError(t, err)
	require.NotNil(t, u.Work)
	assert.Same(t, u.Work, c)

	c, err = Child(u, "Home", false, nil)
	require.NoError(t, err)
	assert.Same(t, &u.Home, c)

	c, err = Child(u, "Shape", true, abstract)
	require.NoError(t, err)
	assert.IsType(t, &Square{}, c)
	assert.Same(t, u.Shape, c)
}

func TestEqual(t *testing.T) {
	now := time.Now()
	tests := []struct {
		a, b any
		want bool
	}{
		{nil, nil, true},
		{nil, "x", false},
		{"x", nil, false},
		{int64(1), int64(1), true},
		{int64(1), 1, false},
		{now, now.In(time.FixedZone("x", 3600)), true},
		{[]byte("a"), []byte("a"), true},
		{[]byte("a"), []byte("b"), false},
		{[]string{"a"}, []string{"a"}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Equal(tt.a, tt.b), "%v == %v", tt.a, tt.b)
	}
}

func TestClone(t *testing.T) {
	b := []byte("abc")
	c := Clone(b).([]byte)
	c[0] = 'x'
	assert.Equal(t, "abc", string(b))
	assert.Equal(t, 1, Clone(1))
}

func TestNew(t *testing.T) {
	assert.IsType(t, &User{}, New(reflect.TypeFor[*User]()))
}
