package model

import "regexp"

// TeammateID identifies a roster member. IDs are stable slugs such as
// "md-ali-chowdhury"; display names are resolved only when a record is built.
type TeammateID string

// LeaderID identifies a leader. Every leader is also on the teammate roster,
// so a LeaderID converts losslessly to a TeammateID.
type LeaderID string

// QuestionID identifies a rating question within a question set.
type QuestionID string

// TagID identifies a quick pick, blocker tag or impact tag.
type TagID string

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// MaxIDLength bounds every identifier accepted from a client.
const MaxIDLength = 64

func validSlug(s string) bool {
	return len(s) > 0 && len(s) <= MaxIDLength && slugPattern.MatchString(s)
}

// Valid reports whether the id is a well-formed slug.
func (id TeammateID) Valid() bool { return validSlug(string(id)) }

// Valid reports whether the id is a well-formed slug.
func (id LeaderID) Valid() bool { return validSlug(string(id)) }

// Valid reports whether the id is a well-formed slug.
func (id QuestionID) Valid() bool { return validSlug(string(id)) }

// Valid reports whether the id is a well-formed slug.
func (id TagID) Valid() bool { return validSlug(string(id)) }

// Teammate returns the roster id for this leader.
func (id LeaderID) Teammate() TeammateID { return TeammateID(id) }
