// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package prompts

// Automatically generated convenience vars for the filenames in prompts/
const (
	PromptContextFilterSystem  = "context_filter_system"
	PromptContextFilterUser    = "context_filter_user"
	PromptIntentClassifySystem = "intent_classify_system"
	PromptIntentClassifyUser   = "intent_classify_user"
	PromptMemberMatchSystem    = "member_match_system"
	PromptMemberMatchUser      = "member_match_user"
	PromptTaskExtractSystem    = "task_extract_system"
	PromptTaskExtractUser      = "task_extract_user"
	PromptTaskMatchSystem      = "task_match_system"
	PromptTaskMatchUser        = "task_match_user"
	PromptTaskTitleSystem      = "task_title_system"
	PromptTaskTitleUser        = "task_title_user"
)
