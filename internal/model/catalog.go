package model

// Teammate is a static roster entry.
type Teammate struct {
	ID     TeammateID `json:"id"`
	Name   string     `json:"name"`
	Sprite string     `json:"sprite"`
}

// Leader is a roster member with a managerial role tag.
type Leader struct {
	ID     LeaderID `json:"id"`
	Name   string   `json:"name"`
	Sprite string   `json:"sprite"`
	Role   string   `json:"role,omitempty"` // HOD, Lead
}

// Leader role tags
const (
	LeaderRoleHOD     = "HOD"
	LeaderRoleLead    = "Lead"
	LeaderRoleDefault = "Leader"
)

// Option is one entry of an ordered id -> label table.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// RatingScale is the closed range a question set is rated on.
type RatingScale struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v is a valid rating on the scale. Zero is never
// valid, so an absent map entry and an explicit 0 both read as unrated.
func (s RatingScale) Contains(v int) bool {
	return v != 0 && v >= s.Min && v <= s.Max
}

// Rating scales
var (
	ScaleTen  = RatingScale{Min: 1, Max: 10}
	ScaleFive = RatingScale{Min: 1, Max: 5}
)

// QuestionSet is an ordered set of rating questions sharing one scale.
type QuestionSet struct {
	Name      string      `json:"name"`
	Scale     RatingScale `json:"scale"`
	Questions []Option    `json:"questions"`
}

// IDs returns the question ids in display order.
func (q QuestionSet) IDs() []QuestionID {
	ids := make([]QuestionID, len(q.Questions))
	for i, o := range q.Questions {
		ids[i] = QuestionID(o.ID)
	}
	return ids
}

// Teammates is the full roster.
var Teammates = []Teammate{
	{ID: "md-ali-chowdhury", Name: "Ali", Sprite: "https://i.postimg.cc/66gCmBPc/Ali.png"},
	{ID: "farhan-bin-islam", Name: "Farhan", Sprite: "https://i.postimg.cc/4xbtyVx2/Farhan.png"},
	{ID: "suha-hussein", Name: "Suha", Sprite: "https://i.postimg.cc/x1SFJwKf/Suha.png"},
	{ID: "nazibul-haq", Name: "Nazibul", Sprite: "https://i.postimg.cc/907whqkp/Nazibul.png"},
	{ID: "md-mahidun-nabi", Name: "Mahi", Sprite: "https://i.postimg.cc/tgBxtbPh/Mahi.png"},
	{ID: "api-singha", Name: "Abhi", Sprite: "https://i.postimg.cc/7hG0ZR5S/Abhi.png"},
	{ID: "hm-saif-noor", Name: "Saif", Sprite: "https://i.postimg.cc/HWRNHcn7/Saif.png"},
	{ID: "muhammad-rahat-bin-yousuf", Name: "Rahat", Sprite: "https://i.postimg.cc/1tTV2KvX/Rahat.png"},
	{ID: "tashfia-haque", Name: "Tashfia", Sprite: "https://i.postimg.cc/d05WfDg3/Tashfia.png"},
	{ID: "robiul", Name: "Robiul", Sprite: "https://i.postimg.cc/8sgJPzQV/Robiul.png"},
	{ID: "mehedi-hasan-aunim", Name: "Aunim", Sprite: "https://i.postimg.cc/BbrDLCFk/Aunim.png"},
	{ID: "tashfeen-sara", Name: "Tashfeen", Sprite: "https://i.postimg.cc/5t47p87D/Tashfeen.png"},
	{ID: "maheem-khondoker", Name: "Maheem", Sprite: "https://i.postimg.cc/43fc9yKf/Maheem.png"},
	{ID: "vicky", Name: "Vicky", Sprite: "https://i.postimg.cc/MpSLsh2K/Chat-GPT-Image-Dec-30-2025-12-54-31-PM.png"},
	{ID: "sheikh-mohammed-fahim", Name: "Fahim", Sprite: "https://i.postimg.cc/T3XgTCfW/Fahim.png"},
	{ID: "aminul", Name: "Aminul", Sprite: "https://i.postimg.cc/pXjKNgbH/Aminul.png"},
	{ID: "tajrian-rahman", Name: "Tajrian", Sprite: "https://i.postimg.cc/mgNpQmwQ/Tajrian.png"},
}

// Leaders are the HOD and leads eligible for leadership feedback.
var Leaders = []Leader{
	{ID: "sheikh-mohammed-fahim", Name: "Fahim", Sprite: "https://i.postimg.cc/T3XgTCfW/Fahim.png", Role: LeaderRoleHOD},
	{ID: "tashfeen-sara", Name: "Tashfeen", Sprite: "https://i.postimg.cc/5t47p87D/Tashfeen.png", Role: LeaderRoleLead},
	{ID: "mehedi-hasan-aunim", Name: "Aunim", Sprite: "https://i.postimg.cc/BbrDLCFk/Aunim.png", Role: LeaderRoleLead},
	{ID: "api-singha", Name: "Abhi", Sprite: "https://i.postimg.cc/7hG0ZR5S/Abhi.png", Role: LeaderRoleLead},
	{ID: "hm-saif-noor", Name: "Saif", Sprite: "https://i.postimg.cc/HWRNHcn7/Saif.png", Role: LeaderRoleLead},
}

// QuickPicks are the canned wins.
var QuickPicks = []Option{
	{ID: "learning", Label: "Learned something new"},
	{ID: "helped", Label: "Helped someone else level up"},
	{ID: "simplified", Label: "Simplified or improved how we work"},
	{ID: "decision", Label: "Made or backed a tough call"},
	{ID: "impact", Label: "Delivered real impact"},
	{ID: "other", Label: "Something else entirely"},
}

// BlockerTags are the canned blocker categories.
var BlockerTags = []Option{
	{ID: "process", Label: "Process"},
	{ID: "tools", Label: "Tools or access"},
	{ID: "dependencies", Label: "Dependencies on others"},
	{ID: "decisions", Label: "Slow or unclear decisions"},
	{ID: "scope", Label: "Scope changing mid-stream"},
	{ID: "other", Label: "Other"},
}

// BlockerFeedbackTags are the challenge areas attached to a teammate.
var BlockerFeedbackTags = []Option{
	{ID: "ownership", Label: "Ownership & accountability"},
	{ID: "reliability", Label: "Reliability & follow-through"},
	{ID: "responsiveness", Label: "Responsiveness & availability"},
	{ID: "communication", Label: "Communication clarity & tone"},
	{ID: "context", Label: "Context & documentation"},
	{ID: "handoffs", Label: "Handoffs & collaboration"},
	{ID: "meetings", Label: "Meeting hygiene"},
	{ID: "process", Label: "Process discipline"},
	{ID: "skills", Label: "Skill & knowledge readiness"},
	{ID: "respect", Label: "Respect, credit & psychological safety"},
}

// ImpactTags are shoutout reasons. The Year in Review people page reuses them.
var ImpactTags = []Option{
	{ID: "unblocked", Label: "Unblocked me"},
	{ID: "context", Label: "Shared context"},
	{ID: "clarity", Label: "Gave clarity"},
	{ID: "ownership", Label: "Took ownership"},
	{ID: "forward", Label: "Moved things forward"},
	{ID: "standard", Label: "Set the standard"},
	{ID: "bar", Label: "Raised the bar"},
	{ID: "example", Label: "Led by example"},
}

// CoreValues are the choices for strongest and weakest value.
var CoreValues = []string{
	"Move Fast, Chase Excellence",
	"Take Ownership, Deliver Outcomes",
	"Invent & Simplify",
	"The Dream Team",
	"Have Honesty & Integrity",
	"Debate Openly, Commit Fully",
	"Product First",
}

// CulturePulseQuestions are the 11 culture ratings.
var CulturePulseQuestions = QuestionSet{
	Name:  "culture-pulse",
	Scale: ScaleTen,
	Questions: []Option{
		{ID: "focus", Label: "Focused on What Matters"},
		{ID: "clarity", Label: "Clarity & Guidance"},
		{ID: "safety", Label: "Psychological Safety"},
		{ID: "sustainability", Label: "Pace & Sustainability"},
		{ID: "energy", Label: "Energy & Enjoyment"},
		{ID: "growth", Label: "Growth"},
		{ID: "transparency", Label: "Decision Transparency"},
		{ID: "motivation", Label: "Shared Motivation"},
		{ID: "trust", Label: "Trust Within the Team"},
		{ID: "confidence", Label: "Confidence Going Forward"},
		{ID: "joy", Label: "Joy from Work"},
	},
}

// LeadershipQuestions are asked once per selected leader.
var LeadershipQuestions = QuestionSet{
	Name:  "leadership",
	Scale: ScaleTen,
	Questions: []Option{
		{ID: "clarity", Label: "Clarity of Expectations"},
		{ID: "decision", Label: "Decision-Making & Follow-Through"},
		{ID: "fairness", Label: "Fairness in Evaluation"},
		{ID: "bias", Label: "Bias Awareness"},
		{ID: "feedback", Label: "Quality of Feedback"},
		{ID: "coaching", Label: "Coaching & Growth Support"},
		{ID: "availability", Label: "Availability & Responsiveness"},
		{ID: "safety", Label: "Psychological Safety"},
		{ID: "consistency", Label: "Consistency & Reliability"},
		{ID: "example", Label: "Leading by Example"},
	},
}

// YearInReviewPulseQuestions are the work experience ratings of the
// Year in Review flow, on a five point scale.
var YearInReviewPulseQuestions = QuestionSet{
	Name:  "year-in-review-pulse",
	Scale: ScaleFive,
	Questions: []Option{
		{ID: "focus", Label: "Focused on What Matters"},
		{ID: "clarity", Label: "Clarity and Guidance"},
		{ID: "safety", Label: "Psychological Safety"},
		{ID: "sustainability", Label: "Pace and Sustainability"},
		{ID: "energy", Label: "Energy and Enjoyment"},
		{ID: "growth", Label: "Growth"},
		{ID: "transparency", Label: "Decision Transparency"},
	},
}

// Labels indexes an option table by id.
func Labels(opts []Option) map[string]string {
	m := make(map[string]string, len(opts))
	for _, o := range opts {
		m[o.ID] = o.Label
	}
	return m
}

// Roster resolves teammate and leader ids to display data.
type Roster struct {
	teammates map[TeammateID]Teammate
	leaders   map[LeaderID]Leader
}

// NewRoster indexes the given teammates and leaders.
func NewRoster(teammates []Teammate, leaders []Leader) *Roster {
	r := &Roster{
		teammates: make(map[TeammateID]Teammate, len(teammates)),
		leaders:   make(map[LeaderID]Leader, len(leaders)),
	}
	for _, t := range teammates {
		r.teammates[t.ID] = t
	}
	for _, l := range leaders {
		r.leaders[l.ID] = l
	}
	return r
}

// DefaultRoster returns the built-in roster.
func DefaultRoster() *Roster {
	return NewRoster(Teammates, Leaders)
}

// TeammateName returns the display name, or the raw id if unknown.
func (r *Roster) TeammateName(id TeammateID) string {
	if t, ok := r.teammates[id]; ok {
		return t.Name
	}
	return string(id)
}

// LeaderName returns the display name, or the raw id if unknown.
func (r *Roster) LeaderName(id LeaderID) string {
	if l, ok := r.leaders[id]; ok {
		return l.Name
	}
	return string(id)
}

// LeaderNameWithRole renders "Name (Role)". Unknown ids pass through raw.
func (r *Roster) LeaderNameWithRole(id LeaderID) string {
	l, ok := r.leaders[id]
	if !ok {
		return string(id)
	}
	role := l.Role
	if role == "" {
		role = LeaderRoleDefault
	}
	return l.Name + " (" + role + ")"
}

// IsLeader reports whether id is on the leader list.
func (r *Roster) IsLeader(id LeaderID) bool {
	_, ok := r.leaders[id]
	return ok
}

// IsTeammate reports whether id is on the roster.
func (r *Roster) IsTeammate(id TeammateID) bool {
	_, ok := r.teammates[id]
	return ok
}

// Catalog is the reference data the survey pages render from.
type Catalog struct {
	Teammates           []Teammate  `json:"teammates"`
	Leaders             []Leader    `json:"leaders"`
	QuickPicks          []Option    `json:"quickPicks"`
	BlockerTags         []Option    `json:"blockerTags"`
	BlockerFeedbackTags []Option    `json:"blockerFeedbackTags"`
	ImpactTags          []Option    `json:"impactTags"`
	CoreValues          []string    `json:"coreValues"`
	CulturePulse        QuestionSet `json:"culturePulse"`
	Leadership          QuestionSet `json:"leadership"`
	YearInReviewPulse   QuestionSet `json:"yearInReviewPulse"`
}

// DefaultCatalog returns the built-in reference data.
func DefaultCatalog() Catalog {
	return Catalog{
		Teammates:           Teammates,
		Leaders:             Leaders,
		QuickPicks:          QuickPicks,
		BlockerTags:         BlockerTags,
		BlockerFeedbackTags: BlockerFeedbackTags,
		ImpactTags:          ImpactTags,
		CoreValues:          CoreValues,
		CulturePulse:        CulturePulseQuestions,
		Leadership:          LeadershipQuestions,
		YearInReviewPulse:   YearInReviewPulseQuestions,
	}
}
