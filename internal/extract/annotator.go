package extract

import (
	"feedgraph/internal/core"
	"feedgraph/internal/graph"
)

// Annotations reports what one extraction pass linked.
type Annotations struct {
	Mentions []string
	Tags     []string
	Promotes string
}

// Annotator turns scanned tokens into day-scoped annotation edges. Each
// family is replaced as a whole set (delete then recreate), so re-running
// extraction on edited text never accumulates duplicates.
type Annotator struct {
	Store *graph.Store
}

// Apply re-extracts the post's text. Extraction edges are anchored at the
// post's creation day so the mentions day walk finds them relative to post
// time, not edit time.
func (a *Annotator) Apply(post *core.Entity, text string) (Annotations, error) {
	tokens := Scan(text)
	day := core.DayOf(post.CreatedAt)

	a.clear(post.ID, core.FamilyMentionedOn, day)
	a.clear(post.ID, core.FamilyTaggedOn, day)
	a.clear(post.ID, core.FamilyPromotes, core.StaticDay)

	var result Annotations

	for _, handle := range tokens.Mentions {
		user, ok := a.Store.FindEntity(core.KindUser, core.PropHandle, handle)
		if !ok {
			continue
		}
		if _, err := a.Store.CreateEdge(post.ID, core.FamilyMentionedOn, user.ID, post.CreatedAt, nil); err != nil {
			return Annotations{}, err
		}
		result.Mentions = append(result.Mentions, handle)
	}

	for _, name := range tokens.Tags {
		tag, ok := a.Store.FindEntity(core.KindTag, core.PropName, name)
		if !ok {
			tag = a.Store.CreateEntity(core.KindTag, post.CreatedAt)
			a.Store.SetProp(tag.ID, core.PropName, name)
		}
		if _, err := a.Store.CreateEdge(post.ID, core.FamilyTaggedOn, tag.ID, post.CreatedAt, nil); err != nil {
			return Annotations{}, err
		}
		result.Tags = append(result.Tags, name)
	}

	// First match that resolves to an existing product wins, the rest are
	// ignored: a post promotes at most one product.
	for _, key := range tokens.Products {
		product, ok := a.Store.FindEntity(core.KindProduct, core.PropKey, key)
		if !ok {
			continue
		}
		if _, err := a.Store.CreateEdge(post.ID, core.FamilyPromotes, product.ID, post.CreatedAt, nil); err != nil {
			return Annotations{}, err
		}
		result.Promotes = key
		break
	}

	return result, nil
}

func (a *Annotator) clear(post core.EntityID, family core.Family, day core.Day) {
	for _, edge := range a.Store.EdgesOf(post, family, day, core.Out) {
		a.Store.DeleteEdge(edge.ID)
	}
}
