// Package text splits prose into sentences and words.
package text

import (
	"iter"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter returns sentence splitter for the language. Only English
// punkt model is available, other Latin-script languages reuse its
// punctuation rules, for the rest splitting is turned off (nil splitter).
func NewSplitter(lang language.Tag, log *zap.Logger) *Splitter {
	base, confidence := lang.Base()
	if confidence == language.No {
		log.Warn("Unable to determine language base, turning off sentence splitting", zap.Stringer("tag", lang))
		return nil
	}
	if script, _ := lang.Script(); script.String() != "Latn" {
		log.Debug("No sentence tokenizer model for script, turning off sentence splitting", zap.Stringer("tag", lang), zap.Stringer("script", script))
		return nil
	}

	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentences tokenizer data", zap.Stringer("tag", lang), zap.Error(err))
		return nil
	}
	if enBase, _ := language.English.Base(); base != enBase {
		log.Debug("Using English sentence tokenizer model", zap.Stringer("tag", lang))
	}
	return &Splitter{tok}
}

// Split returns slice of sentences.
func (s *Splitter) Split(in string) []string {
	var out []string
	for sentence := range s.Sentences(in) {
		out = append(out, sentence)
	}
	return out
}

// Sentences returns an iterator over sentences. Tokenizer attaches spaces
// trailing a sentence to the next one, they are moved back here.
func (s *Splitter) Sentences(in string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if s == nil {
			// splitting is off
			yield(in)
			return
		}

		tokens := s.Tokenize(in)
		for i := range tokens {
			text := tokens[i].Text
			if i < len(tokens)-1 {
				next := tokens[i+1].Text
				for idx, sym := range next {
					if !unicode.IsSpace(sym) {
						text += next[:idx]
						tokens[i+1].Text = next[idx:]
						break
					}
				}
			}
			if !yield(text) {
				return
			}
		}
	}
}

// CountSentences returns number of non blank sentences.
func (s *Splitter) CountSentences(in string) int {
	var n int
	for sentence := range s.Sentences(in) {
		if strings.TrimSpace(sentence) != "" {
			n++
		}
	}
	return n
}

// SplitWords returns slice of words, consecutive separators produce empty
// words.
func SplitWords(in string, ignoreNBSP bool) []string {
	var result []string
	for w := range Words(in, ignoreNBSP) {
		result = append(result, w)
	}
	return result
}

// Words returns an iterator over words. The ignoreNBSP parameter determines
// whether NBSP (0xA0) is treated as a separator.
func Words(in string, ignoreNBSP bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		var word strings.Builder
		for _, sym := range in {
			if isSeparator(sym, ignoreNBSP) {
				if !yield(word.String()) {
					return
				}
				word.Reset()
				continue
			}
			word.WriteRune(sym)
		}
		yield(word.String())
	}
}

// CountWords returns number of non empty words, NBSP separates words.
func CountWords(in string) int {
	var n int
	for w := range Words(in, true) {
		if w != "" {
			n++
		}
	}
	return n
}

func isSeparator(r rune, ignoreNBSP bool) bool {
	if uint32(r) <= unicode.MaxLatin1 {
		switch r {
		// exclude NBSP from the list of white space separators for latin1 symbols
		case '\t', '\n', '\v', '\f', '\r', ' ', 0x85:
			return true
		case 0xA0: // NBSP
			return ignoreNBSP
		}
		return false
	}
	return unicode.IsSpace(r)
}
