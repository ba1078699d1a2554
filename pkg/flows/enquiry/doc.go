// Package enquiry implements the enquiry flow: it collects the user's name and
// the topic of their enquiry, then acknowledges both.
//
// Both values persist in the enquiryState slot. A value that is already set is
// never asked for again, so a conversation that restarts the flow skips straight
// to whatever is still missing.
package enquiry
