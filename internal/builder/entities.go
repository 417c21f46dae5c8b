package builder

import (
	"fmt"

	"github.com/ppiankov/clinvar-tsv/internal/model"
	"github.com/ppiankov/clinvar-tsv/internal/xmltok"
	"go.uber.org/zap"
)

// node is the partially built entity of an entity frame
type node interface {
	// attr receives one attribute of the entity's own start tag
	attr(name, value string) error
	// leaf receives a closed non-entity element below the entity. path holds
	// the tags from the entity (exclusive) down to the element (inclusive).
	leaf(path []string, attrs []xmltok.Attr, text string) error
	// adopt receives a finished child entity, with path as for leaf
	adopt(path []string, child node) error
}

// entityTags maps the tags that open an entity frame to their constructors.
// Every other tag opens a value frame.
var entityTags = map[string]func(b *Builder) node{
	"ReleaseSet":                func(*Builder) node { return &releaseNode{v: &model.ReleaseSet{}} },
	"ClinVarSet":                func(*Builder) node { return &setNode{v: &model.ClinVarSet{}} },
	"ReferenceClinVarAssertion": func(*Builder) node { return newRCVNode() },
	"ClinVarAssertion":          func(*Builder) node { return newSCVNode() },
	"ObservedIn":                func(*Builder) node { return &observedInNode{v: &model.ObservedIn{}} },
	"ObservedData":              func(b *Builder) node { return &observedDataNode{v: &model.ObservedDataDescription{}, b: b} },
	"GenotypeSet":               func(*Builder) node { return &genotypeSetNode{v: &model.GenotypeSet{}} },
	"MeasureSet":                func(*Builder) node { return &measureSetNode{v: &model.MeasureSet{}} },
	"Measure":                   func(*Builder) node { return &measureNode{v: &model.Measure{}} },
	"SequenceLocation":          func(*Builder) node { return &locationNode{v: &model.SequenceLocation{}} },
	"TraitSet":                  func(*Builder) node { return &traitSetNode{v: &model.TraitSet{}} },
	"Trait":                     func(*Builder) node { return &traitNode{v: &model.Trait{}} },
	"ClinicalSignificance":      func(*Builder) node { return &clinSigNode{v: &model.ClinicalSignificance{}} },
}

// direct reports whether path names an immediate child tag
func direct(path []string, tag string) bool {
	return len(path) == 1 && path[0] == tag
}

// under reports whether path equals tags
func under(path []string, tags ...string) bool {
	if len(path) != len(tags) {
		return false
	}
	for i := range tags {
		if path[i] != tags[i] {
			return false
		}
	}
	return true
}

// noAttrs, noLeaves and noChildren stub out the parts an entity ignores
type noAttrs struct{}

func (noAttrs) attr(string, string) error { return nil }

type noLeaves struct{}

func (noLeaves) leaf([]string, []xmltok.Attr, string) error { return nil }

type noChildren struct{}

func (noChildren) adopt([]string, node) error { return nil }

// ReleaseSet

type releaseNode struct {
	v *model.ReleaseSet
	noLeaves
	noChildren
}

func (n *releaseNode) attr(name, value string) error {
	if name != "Dated" {
		return nil
	}
	d, err := parseDate(value)
	if err != nil || d == nil {
		return err
	}
	n.v.ReleaseDate = *d
	return nil
}

// ClinVarSet

type setNode struct {
	v *model.ClinVarSet
}

func (n *setNode) attr(name, value string) error {
	if name == "ID" {
		return setUint(&n.v.ID, value)
	}
	return nil
}

func (n *setNode) leaf(path []string, _ []xmltok.Attr, text string) error {
	switch {
	case direct(path, "RecordStatus"):
		n.v.RecordStatus = text
	case direct(path, "Title"):
		n.v.Title = text
	}
	return nil
}

func (n *setNode) adopt(path []string, child node) error {
	switch c := child.(type) {
	case *rcvNode:
		if direct(path, "ReferenceClinVarAssertion") {
			n.v.RefAssertion = c.v
		}
	case *scvNode:
		if direct(path, "ClinVarAssertion") {
			n.v.Assertions = append(n.v.Assertions, *c.v)
		}
	}
	return nil
}

// assertionBody merges the children shared by both assertion kinds
type assertionBody struct {
	observedIn   **model.ObservedIn
	genotypeSets *[]model.GenotypeSet
	traitSets    *[]model.TraitSet
	clinSigs     *[]model.ClinicalSignificance
}

func (a assertionBody) adopt(path []string, child node) error {
	if len(path) != 1 {
		return nil
	}
	switch c := child.(type) {
	case *observedInNode:
		*a.observedIn = c.v
	case *genotypeSetNode:
		*a.genotypeSets = append(*a.genotypeSets, *c.v)
	case *measureSetNode:
		// a plain variant: wrap it so every measure set hangs off a genotype set
		*a.genotypeSets = append(*a.genotypeSets, model.GenotypeSet{
			SetType:     c.v.SetType,
			Accession:   c.v.Accession,
			MeasureSets: []model.MeasureSet{*c.v},
		})
	case *traitSetNode:
		*a.traitSets = append(*a.traitSets, *c.v)
	case *clinSigNode:
		*a.clinSigs = append(*a.clinSigs, *c.v)
	}
	return nil
}

// ReferenceClinVarAssertion

type rcvNode struct {
	v *model.ReferenceClinVarAssertion
	assertionBody
}

func newRCVNode() *rcvNode {
	v := &model.ReferenceClinVarAssertion{}
	return &rcvNode{v: v, assertionBody: assertionBody{
		observedIn:   &v.ObservedIn,
		genotypeSets: &v.GenotypeSets,
		traitSets:    &v.TraitSets,
		clinSigs:     &v.ClinSigs,
	}}
}

func (n *rcvNode) attr(name, value string) error {
	var err error
	switch name {
	case "ID":
		err = setUint(&n.v.ID, value)
	case "DateCreated":
		n.v.DateCreated, err = parseDate(value)
	case "DateLastUpdated":
		n.v.DateUpdated, err = parseDate(value)
	}
	return err
}

func (n *rcvNode) leaf(path []string, attrs []xmltok.Attr, text string) error {
	switch {
	case direct(path, "RecordStatus"):
		n.v.RecordStatus = text
	case direct(path, "ClinVarAccession"):
		for _, a := range attrs {
			var err error
			switch a.Name {
			case "Acc":
				n.v.Accession = a.Value
			case "Version":
				err = setUint(&n.v.Version, a.Value)
			case "DateCreated":
				if n.v.DateCreated == nil {
					n.v.DateCreated, err = parseDate(a.Value)
				}
			case "DateUpdated":
				if n.v.DateUpdated == nil {
					n.v.DateUpdated, err = parseDate(a.Value)
				}
			}
			if err != nil {
				return fmt.Errorf("attribute %s=%q: %w", a.Name, a.Value, err)
			}
		}
	}
	return nil
}

// ClinVarAssertion

type scvNode struct {
	v *model.ClinVarAssertion
	assertionBody
}

func newSCVNode() *scvNode {
	v := &model.ClinVarAssertion{}
	return &scvNode{v: v, assertionBody: assertionBody{
		observedIn:   &v.ObservedIn,
		genotypeSets: &v.GenotypeSets,
		traitSets:    &v.TraitSets,
		clinSigs:     &v.ClinSigs,
	}}
}

func (n *scvNode) attr(name, value string) error {
	if name == "ID" {
		return setUint(&n.v.ID, value)
	}
	return nil
}

func (n *scvNode) leaf(path []string, attrs []xmltok.Attr, text string) error {
	switch {
	case direct(path, "RecordStatus"):
		n.v.RecordStatus = text
	case direct(path, "ClinVarAccession"):
		for _, a := range attrs {
			var err error
			switch a.Name {
			case "Acc":
				n.v.Accession = a.Value
			case "Version":
				err = setUint(&n.v.Version, a.Value)
			}
			if err != nil {
				return fmt.Errorf("attribute %s=%q: %w", a.Name, a.Value, err)
			}
		}
	case direct(path, "ClinVarSubmissionID"):
		if v, ok := xmltok.AttrValue(attrs, "submitterDate"); ok {
			d, err := parseDate(v)
			if err != nil {
				return fmt.Errorf("attribute submitterDate=%q: %w", v, err)
			}
			n.v.SubmitterDate = d
		}
	}
	return nil
}

// ObservedIn

type observedInNode struct {
	v *model.ObservedIn
	noAttrs
}

func (n *observedInNode) leaf(path []string, _ []xmltok.Attr, text string) error {
	switch {
	case under(path, "Sample", "Origin"):
		n.v.Origin = text
	case under(path, "Sample", "Species"):
		n.v.Species = text
	case under(path, "Sample", "AffectedStatus"):
		n.v.AffectedStatus = text
	case direct(path, "Comment"):
		if text != "" {
			n.v.Comments = append(n.v.Comments, text)
		}
	}
	return nil
}

// adopt folds every ObservedData block into one description. Counts-only
// blocks carry no description and leave an earlier one in place.
func (n *observedInNode) adopt(path []string, child node) error {
	c, ok := child.(*observedDataNode)
	if !ok || !direct(path, "ObservedData") {
		return nil
	}
	d := n.v.DataDescription
	if d == nil {
		n.v.DataDescription = c.v
		return nil
	}
	if c.v.Description != nil {
		d.Description = c.v.Description
	}
	d.PubMedIDs = append(d.PubMedIDs, c.v.PubMedIDs...)
	d.OMIMIDs = append(d.OMIMIDs, c.v.OMIMIDs...)
	return nil
}

// ObservedData

type observedDataNode struct {
	v *model.ObservedDataDescription
	b *Builder
	noAttrs
	noChildren
}

func (n *observedDataNode) leaf(path []string, attrs []xmltok.Attr, text string) error {
	switch {
	case direct(path, "Attribute"):
		typ, _ := xmltok.AttrValue(attrs, "Type")
		if typ != "Description" {
			n.b.warner.Warn("attribute_type", typ, "ignoring ObservedData attribute")
			return nil
		}
		desc := text
		n.v.Description = &desc
	case under(path, "Citation", "ID"):
		if src, _ := xmltok.AttrValue(attrs, "Source"); src == "PubMed" {
			n.v.PubMedIDs = n.b.appendID(n.v.PubMedIDs, "pubmed_id", text)
		}
	case direct(path, "XRef"):
		if db, _ := xmltok.AttrValue(attrs, "DB"); db == "OMIM" {
			id, _ := xmltok.AttrValue(attrs, "ID")
			n.v.OMIMIDs = n.b.appendID(n.v.OMIMIDs, "omim_id", id)
		}
	}
	return nil
}

// appendID appends a numeric cross-reference. Identifiers that are not plain
// numbers (OMIM allelic variants such as 600000.0001) are skipped with a
// warning instead of failing the record.
func (b *Builder) appendID(ids []uint32, kind, value string) []uint32 {
	var id uint32
	if err := setUint(&id, value); err != nil {
		b.warner.Warn(kind, value, "skipping non-numeric identifier", zap.Error(err))
		return ids
	}
	return append(ids, id)
}

// GenotypeSet

type genotypeSetNode struct {
	v *model.GenotypeSet
	noLeaves
}

func (n *genotypeSetNode) attr(name, value string) error {
	switch name {
	case "Type":
		n.v.SetType = value
	case "Acc":
		n.v.Accession = value
	}
	return nil
}

func (n *genotypeSetNode) adopt(path []string, child node) error {
	if c, ok := child.(*measureSetNode); ok && direct(path, "MeasureSet") {
		n.v.MeasureSets = append(n.v.MeasureSets, *c.v)
	}
	return nil
}

// MeasureSet

type measureSetNode struct {
	v *model.MeasureSet
	noLeaves
}

func (n *measureSetNode) attr(name, value string) error {
	switch name {
	case "Type":
		n.v.SetType = value
	case "Acc":
		n.v.Accession = value
	}
	return nil
}

func (n *measureSetNode) adopt(path []string, child node) error {
	if c, ok := child.(*measureNode); ok && direct(path, "Measure") {
		n.v.Measures = append(n.v.Measures, *c.v)
	}
	return nil
}

// Measure

type measureNode struct {
	v *model.Measure
}

func (n *measureNode) attr(name, value string) error {
	if name == "Type" {
		n.v.MeasureType = value
	}
	return nil
}

func (n *measureNode) leaf(path []string, attrs []xmltok.Attr, text string) error {
	switch {
	case under(path, "MeasureRelationship", "Symbol", "ElementValue"):
		if text != "" {
			n.v.Symbols = append(n.v.Symbols, text)
		}
	case under(path, "MeasureRelationship", "XRef"):
		if db, _ := xmltok.AttrValue(attrs, "DB"); db == "HGNC" {
			if id, ok := xmltok.AttrValue(attrs, "ID"); ok && id != "" {
				n.v.HGNCIDs = append(n.v.HGNCIDs, id)
			}
		}
	case direct(path, "Comment"):
		if text != "" {
			n.v.Comments = append(n.v.Comments, text)
		}
	}
	return nil
}

func (n *measureNode) adopt(path []string, child node) error {
	// gene locations below MeasureRelationship are not variant locations
	c, ok := child.(*locationNode)
	if !ok || !direct(path, "SequenceLocation") {
		return nil
	}
	if n.v.Locations == nil {
		n.v.Locations = make(map[string]model.SequenceLocation, 2)
	}
	n.v.Locations[c.v.Assembly] = *c.v
	return nil
}

// SequenceLocation

type locationNode struct {
	v      *model.SequenceLocation
	vcfRef bool
	vcfAlt bool
	noLeaves
	noChildren
}

func (n *locationNode) attr(name, value string) error {
	switch name {
	case "Assembly":
		n.v.Assembly = value
	case "Chr":
		n.v.Chrom = value
	case "Accession":
		n.v.ChromAcc = value
	case "start":
		return setOptUint(&n.v.Start, value)
	case "stop":
		return setOptUint(&n.v.Stop, value)
	case "outerStart":
		return setOptUint(&n.v.OuterStart, value)
	case "outerStop":
		return setOptUint(&n.v.OuterStop, value)
	case "innerStart":
		return setOptUint(&n.v.InnerStart, value)
	case "innerStop":
		return setOptUint(&n.v.InnerStop, value)
	case "referenceAlleleVCF":
		n.v.Reference, n.vcfRef = optString(value), true
	case "alternateAlleleVCF":
		n.v.Alternative, n.vcfAlt = optString(value), true
	case "referenceAllele":
		if !n.vcfRef {
			n.v.Reference = optString(value)
		}
	case "alternateAllele":
		if !n.vcfAlt {
			n.v.Alternative = optString(value)
		}
	}
	return nil
}

// TraitSet

type traitSetNode struct {
	v *model.TraitSet
	noLeaves
}

func (n *traitSetNode) attr(name, value string) error {
	switch name {
	case "Type":
		n.v.SetType = value
	case "ID":
		return setOptUint(&n.v.ID, value)
	}
	return nil
}

func (n *traitSetNode) adopt(path []string, child node) error {
	if c, ok := child.(*traitNode); ok && direct(path, "Trait") {
		n.v.Traits = append(n.v.Traits, *c.v)
	}
	return nil
}

// Trait

type traitNode struct {
	v *model.Trait
	noAttrs
	noChildren
}

func (n *traitNode) leaf(path []string, attrs []xmltok.Attr, text string) error {
	if !under(path, "Name", "ElementValue") || text == "" {
		return nil
	}
	typ, _ := xmltok.AttrValue(attrs, "Type")
	switch typ {
	case "Preferred":
		name := text
		n.v.PreferredName = &name
	case "Alternate":
		n.v.AlternateNames = append(n.v.AlternateNames, text)
	}
	return nil
}

// ClinicalSignificance

type clinSigNode struct {
	v *model.ClinicalSignificance
	noChildren
}

func (n *clinSigNode) attr(name, value string) error {
	if name != "DateLastEvaluated" {
		return nil
	}
	d, err := parseDate(value)
	n.v.DateEvaluated = d
	return err
}

func (n *clinSigNode) leaf(path []string, _ []xmltok.Attr, text string) error {
	switch {
	case direct(path, "ReviewStatus"):
		n.v.ReviewStatus = text
	case direct(path, "Description"):
		desc := text
		n.v.Description = &desc
	case direct(path, "Comment"):
		if text != "" {
			n.v.Comments = append(n.v.Comments, text)
		}
	}
	return nil
}
