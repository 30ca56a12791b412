package user

import (
	"github.com/tutorbook/tutorbook/internal/db"
	"github.com/tutorbook/tutorbook/internal/domain/search/filter"
	domuser "github.com/tutorbook/tutorbook/internal/domain/user"
)

// buildIndex creates the FT index over user JSON documents. Aliases come
// from db.FieldAlias so the query renderer can address the same fields.
func buildIndex(ks db.Keyspace) (*db.IndexDefinition, error) {
	b := db.NewIndex(ks.Index()).
		OnJSON().
		Prefix(ks.DocPrefix()).
		TagAs("$."+filter.AttrVisible, db.FieldAlias(filter.AttrVisible))

	for _, a := range []domuser.Aspect{domuser.Mentoring, domuser.Tutoring} {
		subjects := string(a) + ".subjects"
		searches := string(a) + ".searches"
		b.TagAs("$."+subjects+"[*]", db.FieldAlias(subjects)).
			TagAs("$."+searches+"[*]", db.FieldAlias(searches))
	}

	return b.
		TagAs("$.langs[*]", db.FieldAlias(filter.AttrLangs)).
		TagAs("$.verifications[*].checks[*]", db.FieldAlias(filter.AttrChecks)).
		TagAs("$.orgs[*]", db.FieldAlias(filter.AttrOrgs)).
		TagAs("$.parents[*]", "parents").
		TagAs("$._tags[*]", db.FieldAlias(filter.AttrTags)).
		TagAs("$.featured[*]", db.FieldAlias(filter.AttrFeatured)).
		NumericAs("$.availability[*].from", db.FieldAlias(filter.AttrAvailabilityFrom)).
		NumericAs("$.availability[*].to", db.FieldAlias(filter.AttrAvailabilityTo)).
		Build()
}
