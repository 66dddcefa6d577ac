package bundle

// Reserved metadata keys understood by import and export.
const (
	// MetaQuizMode keeps the quiz mode of a tabular category.
	MetaQuizMode = "_lb_quiz_mode"
	// MetaPromptText keeps the prompt of a text-to-text word.
	MetaPromptText = "_lb_prompt_text"
	// MetaWrongAnswerTexts are wrong answers as plain texts.
	MetaWrongAnswerTexts = "_lb_wrong_answer_texts"
	// MetaWrongAnswerIDs are wrong answers resolved to word ids.
	MetaWrongAnswerIDs = "_lb_wrong_answer_ids"
	// MetaSimilarItemIDs reference similar items by id.
	MetaSimilarItemIDs = "_lb_similar_item_ids"
	// MetaSameAnswerIDs reference items sharing an answer by id.
	MetaSameAnswerIDs = "_lb_same_answer_ids"
	// MetaWordImageID links a word to its word image.
	MetaWordImageID = "_lb_word_image_id"
	// MetaSourceKey identifies a tabular row group. Items with a slug
	// taken by an item of a different key get a suffixed slug.
	MetaSourceKey = "_lb_source_key"
)

// RemappedMetaKeys hold item ids that must be translated from source
// ids to store ids on import.
var RemappedMetaKeys = []string{MetaSimilarItemIDs, MetaSameAnswerIDs}
