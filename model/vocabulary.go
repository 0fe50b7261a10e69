package model

import "regexp"

// Intent is the graph retriever's coarse classification of what a query
// seeks. It selects the targeted context lookup and the expected entity
// categories during scoring.
type Intent string

const (
	IntentSymptom    Intent = "symptom"
	IntentDiagnosis  Intent = "diagnosis"
	IntentTreatment  Intent = "treatment"
	IntentCause      Intent = "cause"
	IntentPrevention Intent = "prevention"
	IntentDiet       Intent = "diet"
	IntentRisk       Intent = "risk"
	IntentGeneral    Intent = "general"
)

// IntentPhrases is one entry of the ordered, first-match-wins intent table.
type IntentPhrases struct {
	Intent  Intent
	Phrases []string
}

// TermPattern is a precision pattern for compound medical terms. RE2 has no
// look-around, so the boundary guards are matched explicitly against the
// text surrounding each hit: a match is dropped when it is directly
// preceded/followed by one of the listed fragments.
type TermPattern struct {
	Pattern       *regexp.Regexp
	NotPrecededBy []string
	NotFollowedBy []string
}

// IntentLookup describes the targeted graph lookup for an intent: which
// relation types to follow and, optionally, which neighbor category counts
// as an answer.
type IntentLookup struct {
	Relations      []RelationType
	TargetCategory NodeType
}

// Vocabulary is the immutable keyword configuration of the graph retriever.
// Instances are injected at construction so tests and deployments can carry
// their own fixtures side by side.
type Vocabulary struct {
	// Keywords groups the curated vocabulary by category; matching is a
	// case-insensitive substring test against the query.
	Keywords map[string][]string
	// IntentPatterns is evaluated in order; the first phrase hit wins.
	IntentPatterns []IntentPhrases
	// TermPatterns are precision patterns for compound terms.
	TermPatterns []TermPattern
	// Expansions maps a keyword to additional fuzzy lookup terms, e.g. a
	// disease to its clinical subtypes.
	Expansions map[string][]string
	// Stopwords are excluded from fallback script-run extraction.
	Stopwords map[string]bool
	// CoreTerms are the high-value domain terms that add weight when shared
	// between an entity name and the query.
	CoreTerms []string
	// PrimaryDisease is the canonical disease of the corpus; resolving it
	// earns the disease bonus.
	PrimaryDisease string
	// IntentCategories maps each intent to its expected entity categories.
	IntentCategories map[Intent][]NodeType
	// IntentLookups maps each intent to its targeted graph lookup. Intents
	// without an entry fall back to generic neighbor enumeration.
	IntentLookups map[Intent]IntentLookup
	// RankedCategories earn the flat category bonus during entity ranking.
	RankedCategories []NodeType
}

// DefaultVocabulary returns the gestational diabetes vocabulary the engine
// ships with.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Keywords: map[string][]string{
			"disease": {
				"gestational diabetes mellitus", "gestational diabetes", "diabetes",
				"GDM", "hypertension", "preeclampsia", "anemia", "infection",
			},
			"symptom": {
				"polyuria", "polydipsia", "polyphagia", "weight loss", "fatigue",
				"headache", "edema", "proteinuria", "blurred vision",
			},
			"treatment": {
				"insulin", "exercise", "diet therapy", "medication", "monitoring",
				"glucose control", "injection", "metformin",
			},
			"diagnostic": {
				"blood glucose", "urine glucose", "glucose tolerance", "screening",
				"OGTT", "blood pressure", "ultrasound", "HbA1c",
			},
			"risk": {
				"obesity", "family history", "advanced maternal age", "BMI",
				"prior gestational diabetes", "genetic",
			},
			"nutrition": {
				"carbohydrate", "protein", "calories", "vitamin", "fiber",
				"glycemic index",
			},
			"complication": {
				"preterm birth", "macrosomia", "hypoglycemia", "ketosis",
				"polyhydramnios", "fetal distress",
			},
		},
		IntentPatterns: []IntentPhrases{
			{IntentSymptom, []string{"symptom", "signs of", "manifestation", "presents with"}},
			{IntentDiagnosis, []string{"diagnos", "screening", "test for", "how to check", "examination"}},
			{IntentTreatment, []string{"treat", "therapy", "medication", "manage"}},
			{IntentCause, []string{"cause", "why", "reason", "etiology"}},
			{IntentPrevention, []string{"prevent", "avoid", "reduce the risk"}},
			{IntentDiet, []string{"diet", "eat", "food", "nutrition", "meal"}},
			{IntentRisk, []string{"risk", "danger", "likely to develop", "high-risk"}},
		},
		TermPatterns: []TermPattern{
			{Pattern: regexp.MustCompile(`(?i)gestational diabetes mellitus`)},
			{
				Pattern:       regexp.MustCompile(`(?i)gestational diabetes`),
				NotFollowedBy: []string{" mellitus"},
			},
			{
				Pattern:       regexp.MustCompile(`(?i)diabetes`),
				NotPrecededBy: []string{"gestational "},
				NotFollowedBy: []string{" mellitus"},
			},
			{Pattern: regexp.MustCompile(`(?i)blood glucose`)},
			{Pattern: regexp.MustCompile(`(?i)insulin`)},
			{
				Pattern:       regexp.MustCompile(`(?i)glucose tolerance`),
				NotPrecededBy: []string{"oral "},
			},
			{Pattern: regexp.MustCompile(`OGTT`)},
		},
		Expansions: map[string][]string{
			"diabetes":          {"gestational diabetes mellitus", "type 2 diabetes", "type 1 diabetes"},
			"hypertension":      {"gestational hypertension", "preeclampsia"},
			"infection":         {"urinary tract infection", "respiratory infection"},
			"polydipsia":        {"excessive thirst", "dry mouth"},
			"polyuria":          {"frequent urination", "nocturia"},
			"fatigue":           {"tiredness", "weakness"},
			"blood glucose":     {"fasting blood glucose", "postprandial blood glucose", "random blood glucose"},
			"glucose tolerance": {"OGTT", "oral glucose tolerance test"},
		},
		Stopwords: map[string]bool{
			"what": true, "whats": true, "which": true, "how": true, "why": true,
			"when": true, "where": true, "does": true, "the": true, "are": true,
			"this": true, "that": true, "with": true, "have": true, "has": true,
			"can": true, "could": true, "should": true, "will": true, "there": true,
			"about": true, "tell": true, "know": true, "symptom": true,
			"symptoms": true, "treatment": true,
		},
		CoreTerms: []string{
			"gestational diabetes", "diabetes", "blood glucose", "insulin",
			"glucose tolerance",
		},
		PrimaryDisease: "gestational diabetes mellitus",
		IntentCategories: map[Intent][]NodeType{
			IntentSymptom:    {NodeTypeSymptom, NodeTypeMedicalConcept},
			IntentTreatment:  {NodeTypeTreatment, NodeTypeGuideline},
			IntentDiagnosis:  {NodeTypeDiagnosticMethod},
			IntentCause:      {NodeTypeRiskFactor, NodeTypeMedicalConcept},
			IntentPrevention: {NodeTypeGuideline, NodeTypeTreatment},
			IntentDiet:       {NodeTypeFood, NodeTypeGuideline},
			IntentRisk:       {NodeTypeRiskFactor, NodeTypeComplication},
			IntentGeneral:    {NodeTypeDisease, NodeTypeSymptom, NodeTypeTreatment, NodeTypeDiagnosticMethod},
		},
		IntentLookups: map[Intent]IntentLookup{
			IntentSymptom:   {Relations: []RelationType{RelationHasSymptom}, TargetCategory: NodeTypeSymptom},
			IntentTreatment: {Relations: []RelationType{RelationTreatedBy, RelationRecommends}, TargetCategory: NodeTypeTreatment},
			IntentDiagnosis: {Relations: []RelationType{RelationDiagnosedBy}, TargetCategory: NodeTypeDiagnosticMethod},
			IntentRisk:      {Relations: []RelationType{RelationHasRiskFactor}, TargetCategory: NodeTypeRiskFactor},
			IntentCause:     {Relations: []RelationType{RelationHasRiskFactor, RelationCanCause}},
			IntentDiet:      {Relations: []RelationType{RelationRecommendedFor, RelationContraindicatedFor}, TargetCategory: NodeTypeFood},
		},
		RankedCategories: []NodeType{
			NodeTypeDisease, NodeTypeSymptom, NodeTypeTreatment, NodeTypeDiagnosticMethod,
		},
	}
}

// ExpectedCategories resolves the expected category set for an intent,
// defaulting to the general high-value set.
func (v *Vocabulary) ExpectedCategories(intent Intent) []NodeType {
	if categories, ok := v.IntentCategories[intent]; ok {
		return categories
	}
	return v.IntentCategories[IntentGeneral]
}
