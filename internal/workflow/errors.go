package workflow

import "strings"

// FriendlyError converts a technical error message into the user-facing
// wording spec.md §7 calls for, grounded verbatim on
// _make_error_user_friendly's substring-keyed rule table. Rules are
// checked in the same order as the original so the first matching,
// most-specific rule wins.
func FriendlyError(errMsg, query string) string {
	if errMsg == "" {
		return "I encountered an issue while processing your request. Please try rephrasing your question."
	}

	lower := strings.ToLower(errMsg)

	if strings.Contains(lower, "sql") && (strings.Contains(lower, "generation") || strings.Contains(lower, "failed")) {
		switch {
		case strings.Contains(lower, "missing from") || strings.Contains(lower, "from clause"):
			return "I couldn't determine which data table to use for your question: '" + query + "'. Could you be more specific about what data you'd like to analyze? For example, 'show me sales by region' or 'what are the top products'."
		case strings.Contains(lower, "table") && (strings.Contains(lower, "not found") || strings.Contains(lower, "unknown")):
			return "I couldn't find the data table you're asking about. Could you clarify which data source or table you'd like me to analyze? You can check your connected data sources in the settings."
		case strings.Contains(lower, "reserved word"):
			return "I had trouble understanding your question. Could you rephrase it? For example, instead of using technical terms, try asking 'show me sales data' or 'what are the top customers'."
		case strings.Contains(lower, "placeholder") || strings.Contains(lower, "template"):
			return "I need more information to answer your question. Could you specify which data table or data source you'd like me to analyze?"
		default:
			return "I had trouble converting your question into a database query. Could you try rephrasing it? For example, 'show me sales by month' or 'what are the top 10 products'."
		}
	}

	if strings.Contains(lower, "query execution") || strings.Contains(lower, "execution failed") {
		switch {
		case strings.Contains(lower, "connection") || strings.Contains(lower, "timeout"):
			return "I couldn't connect to your data source right now. Please check that your data source is connected and try again. If the problem persists, you may need to reconnect your data source."
		case strings.Contains(lower, "syntax error"):
			return "There was an issue with the database query. I'll try a different approach. Could you rephrase your question or try asking something simpler?"
		case strings.Contains(lower, "table") && strings.Contains(lower, "not found"):
			return "The data table I tried to access doesn't exist or isn't available. Could you check your data sources and make sure the data you're asking about is connected?"
		default:
			return "I encountered an issue while retrieving your data. Please try again, or rephrase your question if the issue persists."
		}
	}

	if strings.Contains(lower, "validation") || strings.Contains(lower, "invalid") {
		switch {
		case strings.Contains(lower, "sql"):
			return "I generated a query that wasn't valid. Let me try a different approach. Could you rephrase your question?"
		case strings.Contains(lower, "results"):
			return "The data I retrieved wasn't in the expected format. I'll try again with a different approach."
		default:
			return "I encountered a validation issue. Please try rephrasing your question."
		}
	}

	if strings.Contains(lower, "chart") && (strings.Contains(lower, "generation") || strings.Contains(lower, "failed")) {
		return "I successfully retrieved your data, but had trouble creating a visualization. The data is available below - you can view it in table format."
	}

	if strings.Contains(lower, "insights") && (strings.Contains(lower, "generation") || strings.Contains(lower, "failed")) {
		return "I successfully retrieved your data and created a chart, but had trouble generating insights. The chart and data are available below."
	}

	if strings.Contains(lower, "no results") || strings.Contains(lower, "empty") || strings.Contains(lower, "no data") {
		return "Your question '" + query + "' didn't return any results. This could mean:\n• The data doesn't exist for your criteria\n• Your filters are too restrictive\n• The data source needs to be refreshed\n\nTry adjusting your question or checking your data source."
	}

	if strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out") {
		return "Your request took too long to process. This might be because:\n• The data source is slow to respond\n• Your query is very complex\n• The data set is very large\n\nTry simplifying your question or breaking it into smaller parts."
	}

	if strings.Contains(lower, "error") || strings.Contains(lower, "failed") || strings.Contains(lower, "exception") {
		return "I encountered an issue while processing your question: '" + query + "'. Please try rephrasing it or check that your data sources are properly connected. If the problem persists, try asking a simpler question."
	}

	return errMsg
}
