package iotabular

import (
	"strings"

	"github.com/gnames/gnbundle/pkg/textnorm"
)

// Quiz modes inferred from the columns of a file.
const (
	ModeImagePrompt = "image-prompt"
	ModeTextToImage = "text-to-image"
	ModeAudioPrompt = "audio-prompt"
	ModeTextToText  = "text-to-text"
)

// Header candidates are compared after textnorm.Header normalisation.
var (
	GroupHeaders = []string{
		"quiz", "quiz group", "quiz name", "group", "category",
		"category name", "topic", "lesson", "deck", "set",
	}
	ImageHeaders = []string{
		"image", "image file", "image filename", "image name", "image path",
		"image url", "picture", "photo", "img",
	}
	AudioHeaders = []string{
		"audio", "audio file", "audio filename", "audio name", "audio path",
		"audio url", "sound", "recording", "mp3",
	}
	PromptHeaders = []string{
		"prompt", "prompt text", "question", "question text", "source text",
		"term", "front",
	}
	AnswerHeaders = []string{
		"correct answer", "answer", "correct", "right answer",
		"correct option", "translation", "back", "word",
	}
)

// Columns are positions of recognised columns, -1 when absent.
type Columns struct {
	Group  int
	Image  int
	Audio  int
	Prompt int
	Answer int
	Wrong  []int
}

// MatchColumns finds recognised columns in a header row.
func MatchColumns(header []string) Columns {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = textnorm.Header(h)
	}
	used := make(map[int]bool)
	find := func(cands []string) int {
		for _, c := range cands {
			for i, h := range norm {
				if h == c && !used[i] {
					used[i] = true
					return i
				}
			}
		}
		return -1
	}

	var res Columns
	for i, h := range norm {
		if isWrongHeader(h) {
			res.Wrong = append(res.Wrong, i)
			used[i] = true
		}
	}
	res.Group = find(GroupHeaders)
	res.Image = find(ImageHeaders)
	res.Audio = find(AudioHeaders)
	res.Prompt = find(PromptHeaders)
	res.Answer = find(AnswerHeaders)
	return res
}

func isWrongHeader(h string) bool {
	if strings.HasPrefix(h, "distractor") {
		return true
	}
	if !strings.Contains(h, "wrong") && !strings.Contains(h, "incorrect") {
		return false
	}
	return strings.Contains(h, "answer") ||
		strings.Contains(h, "option") ||
		strings.Contains(h, "choice")
}

// Mode infers the quiz mode of a file, empty when the file cannot be
// used.
func (c Columns) Mode() string {
	switch {
	case c.Image >= 0 && len(c.Wrong) > 0:
		return ModeImagePrompt
	case c.Image >= 0:
		return ModeTextToImage
	case c.Audio >= 0:
		return ModeAudioPrompt
	case c.Prompt >= 0:
		return ModeTextToText
	}
	return ""
}

// DetectDelimiter picks the most frequent of comma, semicolon, tab and
// pipe in the first line. Comma wins ties and empty lines.
func DetectDelimiter(text string) rune {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
