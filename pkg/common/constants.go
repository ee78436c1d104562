package common

const (
	RedisStreamPostPriceCheck = "post.price.check"

	RedisStreamGroup    = "monitor-group"
	RedisStreamConsumer = "monitor-consumer"

	RedisKeyBatchLock   = "post_batch_lock:%d"
	RedisKeyBatchCancel = "post_batch_cancel:%d"
	RedisKeyBatchResult = "post_batch_result:%d:%s"

	EventTypePostStatusChanged = "POST_STATUS_CHANGED"

	RecipientScopeOwner   = "owner"
	RecipientScopeChannel = "channel"
)
