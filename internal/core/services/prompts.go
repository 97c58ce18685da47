package services

// Prompt templates for the four pipeline generation calls. Kept in one
// place so the text-parsing contract with AnalysisParser stays visible
// next to the pipeline that depends on it.

const resolvePromptTemplate = `You are resolving context references in a conversation about emails.

Conversation History:
%s

Current Question: %s

Task: If the question contains words like "that", "this", "it", "same", "the link", rewrite it to be self-contained using information from the conversation history. Otherwise, return it as-is.

Examples:
- "give that link" -> "give the link from the license renewal email"
- "what was in it?" -> "what was in the email about job opportunities"
- "show me all emails" -> "show me all emails" (already clear)

Resolved Question (be specific and clear):`

const analysisPromptTemplate = `Analyze this email query and determine the search strategy.

Question: %s

Determine:
1. SCOPE: Does user want ALL emails or just RELEVANT ones? If the user asks "how many" or wants to count emails without specifying a topic, the scope is ALL.
2. SEARCH_TERMS: What keywords should we search for?
3. NEEDS_COUNT: Does the user want to count something?
4. INFO_TYPE: What information do they want? (senders/subjects/links/content/count)

Respond in this format:
SCOPE: [ALL or RELEVANT]
SEARCH_TERMS: [comma-separated keywords]
NEEDS_COUNT: [YES or NO]
INFO_TYPE: [what they want]

Analysis:`

const answerPromptTemplate = `You are an intelligent email assistant. Answer the user's question based on the emails provided.

Original Question: %s
Clarified Question: %s
Number of Emails Retrieved: %d
Search Scope: %s

EMAIL DATA:
%s

INSTRUCTIONS:
1. Answer the user's ORIGINAL question directly and naturally
2. Use the email data above to provide accurate, specific information
3. If they ask for links, extract actual URLs from the emails
4. If they ask for contact details, extract actual emails/phone numbers
5. If counting, count all relevant emails shown above
6. Be conversational and helpful
7. Don't say "I don't have access" - the emails are right above

YOUR ANSWER:`

const summaryPromptTemplate = `You are an email assistant. Summarize today's emails in at most %d short bullet points. Focus on who wrote, what they want, and any deadlines or links.

EMAILS:
%s

SUMMARY:`
