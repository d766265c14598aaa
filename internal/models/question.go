package models

// QuestionID identifies one of the fixed security questions.
// The set is closed: accounts reference a question by id and the texts can
// be reworded without touching stored data.
type QuestionID string

const (
	QuestionPetName    QuestionID = "pet-name"
	QuestionMaidenName QuestionID = "maiden-name"
	QuestionFirstCar   QuestionID = "first-car"
	QuestionBirthCity  QuestionID = "birth-city"
)

type SecurityQuestion struct {
	ID   QuestionID
	Text string
}

var questions = []SecurityQuestion{
	{ID: QuestionPetName, Text: "What was the name of your first pet?"},
	{ID: QuestionMaidenName, Text: "What is your mother's maiden name?"},
	{ID: QuestionFirstCar, Text: "What was the make of your first car?"},
	{ID: QuestionBirthCity, Text: "In what city were you born?"},
}

// Questions returns the full question set in a stable order
func Questions() []SecurityQuestion {
	out := make([]SecurityQuestion, len(questions))
	copy(out, questions)
	return out
}

// QuestionByID reports whether id belongs to the set and returns its question
func QuestionByID(id QuestionID) (SecurityQuestion, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return SecurityQuestion{}, false
}

// QuestionAt maps an arbitrary number onto the set
func QuestionAt(i uint64) SecurityQuestion {
	return questions[i%uint64(len(questions))]
}
