package quotations

// famousFigures maps lower-case mentions to the figure's display name.
var famousFigures = map[string]string{
	"mandela":            "Nelson Mandela",
	"nelson mandela":     "Nelson Mandela",
	"gandhi":             "Mahatma Gandhi",
	"mahatma gandhi":     "Mahatma Gandhi",
	"martin luther king": "Martin Luther King Jr.",
	"kennedy":            "John F. Kennedy",
	"churchill":          "Winston Churchill",
	"einstein":           "Albert Einstein",
	"pope francis":       "Pope Francis",
	"pope paul":          "Pope Paul VI",
	"pope john paul":     "Pope John Paul II",
	"lincoln":            "Abraham Lincoln",
	"roosevelt":          "Franklin D. Roosevelt",
	"eleanor roosevelt":  "Eleanor Roosevelt",
	"kofi annan":         "Kofi Annan",
	"ban ki-moon":        "Ban Ki-moon",
	"ban ki moon":        "Ban Ki-moon",
	"guterres":           "António Guterres",
	"dag hammarskjöld":   "Dag Hammarskjöld",
	"hammarskjöld":       "Dag Hammarskjöld",
	"hammarskjold":       "Dag Hammarskjöld",
	"shakespeare":        "William Shakespeare",
	"confucius":          "Confucius",
	"buddha":             "Buddha",
	"jesus":              "Jesus Christ",
	"prophet muhammad":   "Prophet Muhammad",
	"desmond tutu":       "Desmond Tutu",
	"malala":             "Malala Yousafzai",
	"greta thunberg":     "Greta Thunberg",
	"secretary-general":  "UN Secretary-General",
	"the charter":        "UN Charter",
	"un charter":         "UN Charter",
}

type knownQuote struct {
	phrase      string
	source      string
	explanation string
}

// knownQuotes are passages whose origin is well established. Phrases are
// normalised.
var knownQuotes = []knownQuote{
	{"to save succeeding generations from the scourge of war", "UN Charter Preamble",
		"The opening words of the 1945 UN Charter, expressing the primary purpose of the United Nations."},
	{"we the peoples of the united nations", "UN Charter Preamble",
		"The opening phrase of the UN Charter, emphasising that the UN represents peoples as well as governments."},
	{"development is the new name of peace", "Pope Paul VI",
		"From the 1967 encyclical Populorum Progressio."},
	{"i have a dream", "Martin Luther King Jr.",
		"From the 1963 speech at the Lincoln Memorial during the March on Washington."},
	{"injustice anywhere is a threat to justice everywhere", "Martin Luther King Jr.",
		"From the 1963 Letter from Birmingham Jail."},
	{"be the change you wish to see", "Mahatma Gandhi",
		"Often attributed to Gandhi, summarising his philosophy of leading by example."},
	{"never again", "Holocaust Remembrance",
		"A pledge repeated after the Second World War to prevent future genocides."},
	{"peace cannot be kept by force", "Albert Einstein",
		"Einstein's view that lasting peace requires understanding rather than military power."},
	{"the arc of the moral universe is long", "Martin Luther King Jr.",
		"Popularised by King, originally from Theodore Parker."},
	{"education is the most powerful weapon", "Nelson Mandela",
		"Mandela's belief in education as a tool for social change."},
	{"love is the strongest force", "Mahatma Gandhi",
		"Gandhi's philosophy of nonviolent resistance through love."},
	{"i am a nationalist, but my nationalism is humanity", "Mahatma Gandhi",
		"Gandhi expressing that his patriotism extends to all of humanity."},
}
