package prompts

import "rewriter/internal/provider"

const (
	ModelGPT4oMini     = "gpt-4o-mini-2024-07-18"
	ModelGPT4o         = "gpt-4o-2024-11-20"
	ModelClaude4Sonnet = "claude-sonnet-4-20250514"

	// CountPlaceholder is replaced with the number of buffered articles in
	// the multi-article rewrite prompt.
	CountPlaceholder = "{{count}}"
)

const cleanupPrompt = "kannst du bitte den eigentlichen artikeltext rausfiltern, alles andere (werbung, links, etc.) ausblenden." +
	" Unverändert übernehmen sollst du auch Titel, Autor, Datum. Schreibe keine Kommentare, so dass ich den Text direkt kopieren kann."

const translatePrompt = "将下文翻译成符合中国人阅读习惯的新闻报道，不要生硬的翻译。并且一定要语句通顺流畅，语意符合中文表达习惯，" +
	" 正确标点符号的写法的中文报道文章，尤其是逗号和引号一定要是中文格式的，这一点非常重要，引号要是这样的“”，逗号要是这样的，。" +
	" 译文的表达语序不能以德语语句的语序为准，而是中文的语句语序，但是译文全文结构顺序应该以德文原文为参照标准，另外文中的名词比如人名地名街名等需要在译文后面加括号写上德语原名。注意！！！" +
	" 是逐字翻译，不是总结，也不是提炼中心思想，我需要的是全文逐字翻译，绝对不要缩写！绝对不要总结提炼！！！"

const singleArticlePrompt = "这篇文章里是完全遵照德语原文翻译的文章，现在我需要你按照中文新闻报道的习惯，详细报道一篇内容详实，有清晰的来龙去脉的文章。" +
	"这是一篇需要尽量还原原文，但是更中国本土化的新闻稿件，字数应该跟给你的译文的字数差不多，语句通顺流畅，有一定的戏剧性，文章结构应该以引人好奇，扣人心弦为目的。"

const multiArticlePrompt = "这" + CountPlaceholder + "篇文章里的内容有重叠也有新的进展，你要根据上下文进行融合和翻译，变成一篇完整的报道，不要缩减内容和总结内容，" +
	" 必须内容详实，来龙去脉清楚，用简单粗暴且引起普通人共鸣的角度，写出一篇跌宕起伏的文章。绝对不要缩写！绝对不要总结提炼！！" +
	" IMPORTANT: WRITE AT LEAST 8.000 TOKENS! DO NOT SHORTEN OR SUMMARIZE."

// Default returns the built-in catalog: a cheap model for cleanup, a precise
// model for translation and a more creative model for the rewrite.
func Default() *Catalog {
	return &Catalog{
		Cleanup: Entry{
			Provider: provider.OpenAI,
			Model:    ModelGPT4oMini,
			Prompt:   cleanupPrompt,
		},
		Translate: Entry{
			Provider: provider.Anthropic,
			Model:    ModelClaude4Sonnet,
			Prompt:   translatePrompt,
		},
		Rewrite: RewriteEntry{
			Provider:     provider.OpenAI,
			Model:        ModelGPT4o,
			SinglePrompt: singleArticlePrompt,
			MultiPrompt:  multiArticlePrompt,
		},
	}
}
