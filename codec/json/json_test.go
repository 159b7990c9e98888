package json

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sea-grass/getty/codec"
	"github.com/sea-grass/getty/pkg/merr"
)

type point struct {
	X int `getty:"x"`
	Y int `getty:"y"`
}

type suit uint8

const (
	spades suit = iota
	hearts
)

func (s suit) VariantName() string {
	if s == hearts {
		return "hearts"
	}
	return "spades"
}

func (s *suit) UnmarshalVariant(name string) error {
	switch name {
	case "spades":
		*s = spades
	case "hearts":
		*s = hearts
	default:
		return merr.WrapErrUnknownVariant("suit", name)
	}
	return nil
}

type JSONSuite struct {
	suite.Suite
}

func (s *JSONSuite) TestMarshalStruct() {
	data, err := New().Marshal(point{X: 1, Y: -2})
	s.Require().NoError(err)
	s.Equal(`{"x":1,"y":-2}`, string(data))
}

func (s *JSONSuite) TestRoundTripStruct() {
	c := New()

	data, err := c.Marshal(point{X: 7, Y: 9})
	s.Require().NoError(err)

	var got point
	s.Require().NoError(c.Unmarshal(data, &got))
	s.Equal(point{X: 7, Y: 9}, got)
}

func (s *JSONSuite) TestMarshalStringMapSorted() {
	data, err := New().Marshal(map[string]int{"b": 2, "a": 1})
	s.Require().NoError(err)
	s.Equal(`{"a":1,"b":2}`, string(data))
}

func (s *JSONSuite) TestRoundTripIntKeyMap() {
	c := New()

	data, err := c.Marshal(map[int]string{3: "three"})
	s.Require().NoError(err)
	s.Equal(`{"3":"three"}`, string(data))

	var got map[int]string
	s.Require().NoError(c.Unmarshal(data, &got))
	s.Equal(map[int]string{3: "three"}, got)
}

func (s *JSONSuite) TestBytesAsBase64() {
	type blob struct {
		Data []byte `getty:"data"`
	}
	c := New()

	data, err := c.Marshal(blob{Data: []byte("hi")})
	s.Require().NoError(err)
	s.Equal(`{"data":"aGk="}`, string(data))

	var got blob
	s.Require().NoError(c.Unmarshal(data, &got))
	s.Equal([]byte("hi"), got.Data)
}

func (s *JSONSuite) TestOptional() {
	c := New()

	data, err := c.Marshal((*point)(nil))
	s.Require().NoError(err)
	s.Equal(`null`, string(data))

	var got *point
	s.Require().NoError(c.Unmarshal(data, &got))
	s.Nil(got)

	data, err = c.Marshal(&point{X: 1, Y: 2})
	s.Require().NoError(err)
	s.Require().NoError(c.Unmarshal(data, &got))
	s.Equal(&point{X: 1, Y: 2}, got)
}

func (s *JSONSuite) TestTupleAsArray() {
	c := New()

	data, err := c.Marshal([3]int{1, 2, 3})
	s.Require().NoError(err)
	s.Equal(`[1,2,3]`, string(data))

	var got [3]int
	s.Require().NoError(c.Unmarshal(data, &got))
	s.Equal([3]int{1, 2, 3}, got)

	s.ErrorIs(c.Unmarshal([]byte(`[1,2]`), &got), merr.ErrMissingElement)
}

func (s *JSONSuite) TestVariant() {
	c := New()

	data, err := c.Marshal(hearts)
	s.Require().NoError(err)
	s.Equal(`"hearts"`, string(data))

	var got suit
	s.Require().NoError(c.Unmarshal(data, &got))
	s.Equal(hearts, got)

	s.ErrorIs(c.Unmarshal([]byte(`"joker"`), &got), merr.ErrUnknownVariant)
}

func (s *JSONSuite) TestUnknownField() {
	input := []byte(`{"x":1,"y":2,"z":3}`)

	var got point
	s.ErrorIs(New().Unmarshal(input, &got), merr.ErrUnknownField)

	s.Require().NoError(New(WithDiscardUnknown()).Unmarshal(input, &got))
	s.Equal(point{X: 1, Y: 2}, got)
}

func (s *JSONSuite) TestMissingField() {
	var got point
	s.ErrorIs(New().Unmarshal([]byte(`{"x":1}`), &got), merr.ErrMissingField)
}

func (s *JSONSuite) TestCategoryMismatch() {
	var got point
	s.ErrorIs(New().Unmarshal([]byte(`{"x":true,"y":2}`), &got), merr.ErrUnexpectedCategory)
}

func (s *JSONSuite) TestTruncatedInput() {
	var got point
	s.Error(New().Unmarshal([]byte(`{"x":1,`), &got))
}

// 空字符串是合法的对象键，不能与“对象结束”混淆。
func (s *JSONSuite) TestEmptyStringKey() {
	c := New()

	data, err := c.Marshal(map[string]int{"": 7})
	s.Require().NoError(err)
	s.Equal(`{"":7}`, string(data))

	var got map[string]int
	s.Require().NoError(c.Unmarshal(data, &got))
	s.Equal(map[string]int{"": 7}, got)

	var mixed map[string]int
	s.Require().NoError(c.Unmarshal([]byte(`{"":1,"a":2}`), &mixed))
	s.Equal(map[string]int{"": 1, "a": 2}, mixed)
}

func (s *JSONSuite) TestMalformedInput() {
	var got int
	s.ErrorIs(New().Unmarshal([]byte(`@`), &got), merr.ErrInvalidValue)
}

func (s *JSONSuite) TestIndent() {
	data, err := New(WithIndent(2)).Marshal(point{X: 1, Y: 2})
	s.Require().NoError(err)
	s.Contains(string(data), "\n")
}

func (s *JSONSuite) TestRegistered() {
	c, ok := codec.Get(Name)
	s.Require().True(ok)
	s.Equal(Name, c.Name())

	data, err := codec.Marshal(Name, point{X: 1, Y: 2})
	s.Require().NoError(err)

	var got point
	s.Require().NoError(codec.Unmarshal(Name, data, &got))
	s.Equal(point{X: 1, Y: 2}, got)
}

func TestJSON(t *testing.T) {
	suite.Run(t, new(JSONSuite))
}
