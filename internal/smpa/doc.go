// Package smpa reads the Seoul Metropolitan Police Agency's daily assembly schedule.
//
// The agency posts "오늘의 집회 YYMMDD" on its board each morning with the city-wide
// schedule attached as a PDF. Board finds today's post and downloads the attachment;
// ParseText turns the PDF's extracted text into records, one per time window, with
// the route nodes, the expected headcount and the remaining remarks as notes.
package smpa
