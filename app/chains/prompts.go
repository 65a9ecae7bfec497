package chains

const summaryPrompt = `請以台灣用語的繁體中文，逐步思考並總結以下文章。
先寫出推理步驟，再給出簡潔的摘要、重點、心得與相關的英文 hashtag。

文章內容：
%s`

const translatePrompt = `Translate the following text into %s.
Keep the original meaning, tone and formatting. Reply with the translation only.

Text:
%s`

const polishPrompt = `Rewrite the following text so it reads clearly and naturally.
Fix grammar and wording, keep the language and meaning of the original.
Reply with the rewritten text only.

Text:
%s`

const jlptPrompt = `你是一位精通日文的老師，熟悉日本語能力試驗（JLPT）的考試範圍，並使用台灣用語的繁體中文進行教學。
從給定的文章中，整理出最困難的詞彙與文法，提供詳細解釋、難度等級及日文與繁體中文對照的例句。
優先挑出 N2 及 N1 級別，或特別難以掌握的部分。`

const loanPrompt = `Extract the loan described by the user.
The annual interest rate must be between zero and one, e.g. 2.5% is 0.025.
Use the currency symbol mentioned by the user, or "$" when none is given.`

const askPrompt = `You answer questions about a group chat.
Use only the chat messages below. Each message starts with its link.
Cite the links of the messages you rely on. If the messages do not contain
the answer, say so.

Chat messages:
%s`
