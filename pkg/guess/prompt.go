package guess

const questionTask = `Generate a yes/no question in order to guess the celebrity's name in the user's mind. You can ask a general question or directly guess the celebrity's name if you think the signal is strong enough. You should never ask the same question in the past_questions list.`

const questionRules = `The history section lists past_questions and past_answers in the order they were asked; past_answers[i] is the human's answer to past_questions[i].
Never propose any question listed in avoid_questions either: the human declined to answer them, or they repeat an earlier question.
When new_question names a specific celebrity, set guess_made to true. Otherwise set it to false.`

const reflectionTask = `Provide reflection on the guessing process.`

// nextQuestion is the structured output of the question generator.
type nextQuestion struct {
	Reasoning   string `json:"reasoning,omitempty" jsonschema:"Short notes on what the answers so far imply"`
	GuessMade   bool   `json:"guess_made" jsonschema:"If the new_question is a celebrity name guess set to true; if it is still a general question set to false"`
	NewQuestion string `json:"new_question" jsonschema:"new question that can help narrow down the celebrity name"`
}

type reflection struct {
	Reflection string `json:"reflection" jsonschema:"reflection on the guessing process including what was done well and what can be improved"`
}
